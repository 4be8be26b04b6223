package service

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cse-hub/crs-api/internal/models"
)

var (
	cs101 = models.CourseID{Code: "CS101", Term: "24F"}
	cs350 = models.CourseID{Code: "CS350", Term: "24F"}

	classL1 = models.Class{Course: cs101, Section: "L1"}
	classL2 = models.Class{Course: cs101, Section: "L2"}
	classR1 = models.Class{Course: cs350, Section: "R1"}
)

func fixtureUsers() map[string]models.User {
	return map[string]models.User{
		"alice@university.edu": {
			Email: "alice@university.edu",
			Name:  "Alice",
			Enrollment: []models.Enrollment{
				{Course: cs101, Section: "L1", Role: models.RoleStudent},
				{Course: cs101, Section: "LA1", Role: models.RoleStudent},
			},
		},
		"bob@university.edu": {
			Email: "bob@university.edu",
			Name:  "Bob",
			Enrollment: []models.Enrollment{
				{Course: cs101, Section: "L2", Role: models.RoleStudent},
			},
		},
		"tara@university.edu": {
			Email: "tara@university.edu",
			Name:  "Tara",
			Enrollment: []models.Enrollment{
				{Course: cs101, Section: "L1", Role: models.RoleTA},
				{Course: cs350, Section: "R1", Role: models.RoleStudent},
			},
		},
		"ivan@university.edu": {
			Email: "ivan@university.edu",
			Name:  "Ivan",
			Enrollment: []models.Enrollment{
				{Course: cs101, Section: "L1", Role: models.RoleInstructor},
				{Course: cs101, Section: "LA1", Role: models.RoleInstructor},
			},
		},
		"irene@university.edu": {
			Email: "irene@university.edu",
			Name:  "Irene",
			Enrollment: []models.Enrollment{
				{Course: cs101, Section: "L1", Role: models.RoleInstructor},
			},
		},
		"rita@university.edu": {
			Email:      "rita@university.edu",
			Name:       "Rita",
			Enrollment: nil,
		},
	}
}

func fixtureCourses() map[models.CourseID]models.Course {
	return map[models.CourseID]models.Course{
		cs101: {
			Code:  "CS101",
			Term:  "24F",
			Title: "Intro to Programming",
			Sections: map[string]models.Section{
				"L1":  {},
				"L2":  {},
				"LA1": {},
			},
			Assignments: map[string]models.Assignment{
				"pa1": {Name: "Warmup", Due: "2024-10-01T23:59:59+08:00", MaxExtension: "P7D"},
			},
			EffectiveRequestTypes: map[string]bool{
				string(models.RequestSwapSection):       true,
				string(models.RequestDeadlineExtension): true,
			},
		},
		cs350: {
			Code:  "CS350",
			Term:  "24F",
			Title: "Independent Study",
			Sections: map[string]models.Section{
				"R1": {},
			},
			EffectiveRequestTypes: map[string]bool{
				string(models.RequestDeadlineExtension): true,
			},
		},
	}
}

func requestInit(class models.Class) CreateRequestInput {
	return CreateRequestInput{
		Class: class,
		Type:  models.RequestSwapSection,
		Metadata: map[string]interface{}{
			"fromSection": "L1",
			"toSection":   "L2",
		},
		Details: models.RequestDetails{Reason: "timetable clash"},
	}
}

type mockUserRepo struct {
	mu      sync.Mutex
	users   map[string]models.User
	renamed map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: fixtureUsers(), renamed: make(map[string]string)}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return &u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) UpdateName(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Name = name
	m.users[email] = u
	m.renamed[email] = name
	return nil
}

func (m *mockUserRepo) FindByClassRole(ctx context.Context, class models.Class, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.HasClassRole(class, role) {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockCourseRepo struct {
	courses  map[models.CourseID]models.Course
	replaced []string
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: fixtureCourses()}
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id models.CourseID) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockCourseRepo) FindByIDs(ctx context.Context, ids []models.CourseID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ReplaceSections(ctx context.Context, id models.CourseID, sections map[string]models.Section) error {
	c, ok := m.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.Sections = sections
	m.courses[id] = c
	m.replaced = append(m.replaced, "sections")
	return nil
}

func (m *mockCourseRepo) ReplaceEffectiveRequestTypes(ctx context.Context, id models.CourseID, types map[string]bool) error {
	c, ok := m.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.EffectiveRequestTypes = types
	m.courses[id] = c
	m.replaced = append(m.replaced, "effectiveRequestTypes")
	return nil
}

type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.Request
	nextID   int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*models.Request)}
}

func (m *mockRequestRepo) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("req-%d", m.nextID)
}

func (m *mockRequestRepo) Insert(ctx context.Context, request *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *request
	m.requests[request.ID] = &clone
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockRequestRepo) FindByRequester(ctx context.Context, email string) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Request
	for _, r := range m.requests {
		if r.From == email {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) FindByClasses(ctx context.Context, classes []models.Class) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Request
	for _, r := range m.requests {
		for _, class := range classes {
			if r.Class == class {
				out = append(out, *r)
				break
			}
		}
	}
	return out, nil
}

// AttachResponse mirrors the store's conditional update: the write applies
// only while the response is still absent.
func (m *mockRequestRepo) AttachResponse(ctx context.Context, id string, response *models.Response) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Response != nil {
		return false, nil
	}
	r.Response = response
	return true, nil
}
