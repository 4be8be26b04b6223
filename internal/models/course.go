package models

import "fmt"

// CourseID is the composite key identifying a course offering.
type CourseID struct {
	Code string `bson:"code" json:"code" binding:"required"`
	Term string `bson:"term" json:"term" binding:"required"`
}

// String renders the key the way it appears in error messages and logs.
func (id CourseID) String() string {
	return fmt.Sprintf("%s (%s)", id.Code, id.Term)
}

// Class identifies one section of a course. It is derived, never stored on
// its own, and is the unit of role-based authorization for requests.
type Class struct {
	Course  CourseID `bson:"course" json:"course" binding:"required"`
	Section string   `bson:"section" json:"section" binding:"required"`
}

func (c Class) String() string {
	return fmt.Sprintf("%s %s", c.Course, c.Section)
}

// TimeSlot is a single scheduled meeting of a section.
type TimeSlot struct {
	Day   string `bson:"day" json:"day"`
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
	Venue string `bson:"venue,omitempty" json:"venue,omitempty"`
}

// Section holds the meeting schedule of one section label.
type Section struct {
	Schedule []TimeSlot `bson:"schedule" json:"schedule"`
}

// Assignment describes a graded item and the extension window instructors
// may grant for it. MaxExtension is an ISO 8601 duration and is passed
// through opaquely; the core never does arithmetic on it.
type Assignment struct {
	Name         string `bson:"name" json:"name"`
	Due          string `bson:"due" json:"due"`
	MaxExtension string `bson:"maxExtension" json:"maxExtension"`
}

// Course is the stored course document.
type Course struct {
	Code                  string                `bson:"code" json:"code"`
	Term                  string                `bson:"term" json:"term"`
	Title                 string                `bson:"title" json:"title"`
	Sections              map[string]Section    `bson:"sections" json:"sections"`
	Assignments           map[string]Assignment `bson:"assignments" json:"assignments"`
	EffectiveRequestTypes map[string]bool       `bson:"effectiveRequestTypes" json:"effectiveRequestTypes"`
}

// ID returns the composite key of the course.
func (c *Course) ID() CourseID {
	return CourseID{Code: c.Code, Term: c.Term}
}

// HasSection reports whether the course carries the given section label.
func (c *Course) HasSection(section string) bool {
	_, ok := c.Sections[section]
	return ok
}
