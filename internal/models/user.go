package models

// Role is a user's standing within one class.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleTA         Role = "ta"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleTA:
		return true
	}
	return false
}

// Enrollment is one (course, section, role) triple held by a user. A user
// may hold several entries for the same course, and duplicates across
// sections are valid.
type Enrollment struct {
	Course  CourseID `bson:"course" json:"course"`
	Section string   `bson:"section" json:"section"`
	Role    Role     `bson:"role" json:"role"`
}

// Class returns the class the entry refers to.
func (e Enrollment) Class() Class {
	return Class{Course: e.Course, Section: e.Section}
}

// User is the stored user document, keyed by email.
type User struct {
	Email        string       `bson:"email" json:"email"`
	Name         string       `bson:"name" json:"name"`
	PasswordHash string       `bson:"passwordHash,omitempty" json:"-"`
	Enrollment   []Enrollment `bson:"enrollment" json:"enrollment"`
}

// InCourse reports whether any enrollment entry references the course,
// regardless of role.
func (u *User) InCourse(course CourseID) bool {
	for _, e := range u.Enrollment {
		if e.Course == course {
			return true
		}
	}
	return false
}

// HasCourseRole reports whether the user holds the role in any section of
// the course.
func (u *User) HasCourseRole(course CourseID, role Role) bool {
	for _, e := range u.Enrollment {
		if e.Course == course && e.Role == role {
			return true
		}
	}
	return false
}

// HasClassRole reports whether the user holds one of the roles in the exact
// (course, section) pair.
func (u *User) HasClassRole(class Class, roles ...Role) bool {
	for _, e := range u.Enrollment {
		if e.Class() != class {
			continue
		}
		for _, role := range roles {
			if e.Role == role {
				return true
			}
		}
	}
	return false
}

// ClassesWithRole returns every class the user holds the role in,
// deduplicated and in enrollment order.
func (u *User) ClassesWithRole(role Role) []Class {
	seen := make(map[Class]struct{})
	var classes []Class
	for _, e := range u.Enrollment {
		if e.Role != role {
			continue
		}
		class := e.Class()
		if _, ok := seen[class]; ok {
			continue
		}
		seen[class] = struct{}{}
		classes = append(classes, class)
	}
	return classes
}

// CourseIDs returns the deduplicated course keys referenced by the user's
// enrollment, in enrollment order.
func (u *User) CourseIDs() []CourseID {
	seen := make(map[CourseID]struct{})
	var ids []CourseID
	for _, e := range u.Enrollment {
		if _, ok := seen[e.Course]; ok {
			continue
		}
		seen[e.Course] = struct{}{}
		ids = append(ids, e.Course)
	}
	return ids
}
