// Package permission implements the authorization rules over an already
// resolved user. The functions are pure: they inspect the enrollment list
// only and never touch storage.
package permission

import (
	"fmt"
	"strings"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

// AssertInCourse passes when any enrollment entry references the course,
// regardless of role.
func AssertInCourse(user *models.User, course models.CourseID, op string) error {
	if user.InCourse(course) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrCoursePermission, deniedMessage(user.Email, nil, course.String(), op))
}

// AssertCourseInstructor passes when the user is an instructor in any
// section of the course.
func AssertCourseInstructor(user *models.User, course models.CourseID, op string) error {
	if user.HasCourseRole(course, models.RoleInstructor) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrCoursePermission,
		deniedMessage(user.Email, []models.Role{models.RoleInstructor}, course.String(), op))
}

// AssertClassRole passes when the user holds one of the allowed roles in the
// exact (course, section) pair of the class.
func AssertClassRole(user *models.User, class models.Class, roles []models.Role, op string) error {
	if user.HasClassRole(class, roles...) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrClassPermission, deniedMessage(user.Email, roles, class.String(), op))
}

func deniedMessage(email string, roles []models.Role, target, op string) string {
	return fmt.Sprintf("user %s does not have %s in %s for %s", email, roleList(roles), target, op)
}

func roleList(roles []models.Role) string {
	if len(roles) == 0 {
		return "any role"
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return "the role " + strings.Join(names, "/")
}
