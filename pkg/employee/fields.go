package employee

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when a mutation names a field the form does not
// carry.
var ErrUnknownField = errors.New("employee: unknown field")

// Field names as they appear on the wire and in form submissions.
const (
	FieldAge               = "age"
	FieldGender            = "gender"
	FieldEducation         = "education"
	FieldDepartment        = "department"
	FieldJobRole           = "job_role"
	FieldMonthlyIncome     = "monthly_income"
	FieldYearsAtCompany    = "years_at_company"
	FieldPromotions        = "promotions"
	FieldOvertime          = "overtime"
	FieldPerformanceRating = "performance_rating"

	FieldLoginTime           = "login_time"
	FieldLogoutTime          = "logout_time"
	FieldTotalTasksCompleted = "total_tasks_completed"
	FieldWeeklyAbsences      = "weekly_absences"
)

// FieldNames returns the attrition form fields in display order.
func FieldNames() []string {
	return []string{
		FieldAge,
		FieldGender,
		FieldEducation,
		FieldDepartment,
		FieldJobRole,
		FieldMonthlyIncome,
		FieldYearsAtCompany,
		FieldPromotions,
		FieldOvertime,
		FieldPerformanceRating,
	}
}

// ProductivityFieldNames returns the productivity form fields in display order.
func ProductivityFieldNames() []string {
	return []string{
		FieldLoginTime,
		FieldLogoutTime,
		FieldTotalTasksCompleted,
		FieldWeeklyAbsences,
	}
}

// ApplyField sets a single field from its raw form value. Numeric fields are
// coerced and fall back to zero when the input is blank or unparsable, the
// same way a browser number input reports an empty value. Categorical fields
// are stored verbatim; validation happens at submission time.
func (d *Data) ApplyField(name, value string) error {
	switch strings.TrimSpace(name) {
	case FieldAge:
		d.Age = coerceInt(value)
	case FieldGender:
		d.Gender = Gender(value)
	case FieldEducation:
		d.Education = Education(value)
	case FieldDepartment:
		d.Department = Department(value)
	case FieldJobRole:
		d.JobRole = value
	case FieldMonthlyIncome:
		d.MonthlyIncome = coerceFloat(value)
	case FieldYearsAtCompany:
		d.YearsAtCompany = coerceInt(value)
	case FieldPromotions:
		d.Promotions = coerceInt(value)
	case FieldOvertime:
		d.Overtime = Overtime(value)
	case FieldPerformanceRating:
		d.PerformanceRating = coerceInt(value)
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return nil
}

// Values exposes the record keyed by field name for form pre-population.
func (d Data) Values() map[string]any {
	return map[string]any{
		FieldAge:               d.Age,
		FieldGender:            string(d.Gender),
		FieldEducation:         string(d.Education),
		FieldDepartment:        string(d.Department),
		FieldJobRole:           d.JobRole,
		FieldMonthlyIncome:     d.MonthlyIncome,
		FieldYearsAtCompany:    d.YearsAtCompany,
		FieldPromotions:        d.Promotions,
		FieldOvertime:          string(d.Overtime),
		FieldPerformanceRating: d.PerformanceRating,
	}
}

// ApplyField sets a single productivity field. Every productivity field is
// numeric.
func (p *Productivity) ApplyField(name, value string) error {
	switch strings.TrimSpace(name) {
	case FieldLoginTime:
		p.LoginTime = coerceFloat(value)
	case FieldLogoutTime:
		p.LogoutTime = coerceFloat(value)
	case FieldTotalTasksCompleted:
		p.TotalTasksCompleted = coerceInt(value)
	case FieldWeeklyAbsences:
		p.WeeklyAbsences = coerceInt(value)
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return nil
}

// Values exposes the record keyed by field name for form pre-population.
func (p Productivity) Values() map[string]any {
	return map[string]any{
		FieldLoginTime:           p.LoginTime,
		FieldLogoutTime:          p.LogoutTime,
		FieldTotalTasksCompleted: p.TotalTasksCompleted,
		FieldWeeklyAbsences:      p.WeeklyAbsences,
	}
}

func coerceFloat(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func coerceInt(raw string) int {
	return int(math.Trunc(coerceFloat(raw)))
}
