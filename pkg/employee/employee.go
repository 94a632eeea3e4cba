package employee

// Gender enumerates the gender values accepted by the attrition form.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Education enumerates the education levels accepted by the attrition form.
type Education string

const (
	EducationGraduate     Education = "Graduate"
	EducationPostGraduate Education = "Post-Graduate"
	EducationPhD          Education = "PhD"
)

// Department enumerates the departments offered by the attrition form. The
// random forest service only understands a subset; see package remap.
type Department string

const (
	DepartmentIT      Department = "IT"
	DepartmentSales   Department = "Sales"
	DepartmentHR      Department = "HR"
	DepartmentFinance Department = "Finance"
	DepartmentRnD     Department = "R&D"
)

// Overtime is a Yes/No flag kept as a string because the services expect the
// literal values.
type Overtime string

const (
	OvertimeYes Overtime = "Yes"
	OvertimeNo  Overtime = "No"
)

// Data is the canonical attrition input shared by the logistic regression and
// random forest services.
type Data struct {
	Age               int        `json:"age"`
	Gender            Gender     `json:"gender"`
	Education         Education  `json:"education"`
	Department        Department `json:"department"`
	JobRole           string     `json:"job_role"`
	MonthlyIncome     float64    `json:"monthly_income"`
	YearsAtCompany    int        `json:"years_at_company"`
	Promotions        int        `json:"promotions"`
	Overtime          Overtime   `json:"overtime"`
	PerformanceRating int        `json:"performance_rating"`
}

// Productivity is the input of the productivity service. Times are hours of
// the day in the 0-24 range.
type Productivity struct {
	LoginTime           float64 `json:"login_time"`
	LogoutTime          float64 `json:"logout_time"`
	TotalTasksCompleted int     `json:"total_tasks_completed"`
	WeeklyAbsences      int     `json:"weekly_absences"`
}

// Default returns the values the attrition form starts with.
func Default() Data {
	return Data{
		Age:               30,
		Gender:            GenderMale,
		Education:         EducationGraduate,
		Department:        DepartmentIT,
		JobRole:           "",
		MonthlyIncome:     45000,
		YearsAtCompany:    2,
		Promotions:        0,
		Overtime:          OvertimeNo,
		PerformanceRating: 3,
	}
}

// DefaultProductivity returns the values the productivity form starts with.
func DefaultProductivity() Productivity {
	return Productivity{
		LoginTime:           9,
		LogoutTime:          17,
		TotalTasksCompleted: 20,
		WeeklyAbsences:      1,
	}
}

// Genders lists the selectable genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

// EducationLevels lists the selectable education levels in display order.
func EducationLevels() []Education {
	return []Education{EducationGraduate, EducationPostGraduate, EducationPhD}
}

// Departments lists the selectable departments in display order.
func Departments() []Department {
	return []Department{DepartmentIT, DepartmentSales, DepartmentHR, DepartmentFinance, DepartmentRnD}
}

// OvertimeOptions lists the overtime flags in display order.
func OvertimeOptions() []Overtime {
	return []Overtime{OvertimeYes, OvertimeNo}
}
