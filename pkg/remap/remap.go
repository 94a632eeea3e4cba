// Package remap adapts the canonical employee record to the narrower
// vocabulary of the random forest attrition service. Every function is total:
// unrecognised inputs map to a documented default instead of failing.
package remap

import "github.com/goliatone/go-workforce-insights/pkg/employee"

// Fallbacks applied when an input value is not part of the known vocabulary.
const (
	DefaultDepartment = employee.DepartmentIT
	DefaultGender     = employee.GenderMale
)

var departments = map[employee.Department]employee.Department{
	employee.DepartmentHR:      employee.DepartmentHR,
	employee.DepartmentSales:   employee.DepartmentSales,
	employee.DepartmentIT:      employee.DepartmentIT,
	employee.DepartmentFinance: employee.DepartmentRnD,
	employee.DepartmentRnD:     employee.DepartmentRnD,
}

// Department maps any department onto {IT, Sales, HR, R&D}. Finance becomes
// R&D and unknown values become IT. The mapping is idempotent.
func Department(value employee.Department) employee.Department {
	if mapped, ok := departments[value]; ok {
		return mapped
	}
	return DefaultDepartment
}

// Gender maps any gender onto {Male, Female}. Other and unknown values become
// Male.
func Gender(value employee.Gender) employee.Gender {
	switch value {
	case employee.GenderMale, employee.GenderFemale:
		return value
	default:
		return DefaultGender
	}
}

// ForRandomForest returns a copy of data with the categorical fields the
// random forest service restricts rewritten. Other fields pass through.
func ForRandomForest(data employee.Data) employee.Data {
	out := data
	out.Department = Department(data.Department)
	out.Gender = Gender(data.Gender)
	return out
}

// Departments lists the departments the random forest service accepts.
func Departments() []employee.Department {
	return []employee.Department{
		employee.DepartmentHR,
		employee.DepartmentSales,
		employee.DepartmentIT,
		employee.DepartmentRnD,
	}
}
