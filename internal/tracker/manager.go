package tracker

import (
	"fmt"
)

// Manager is the registry of users and projects and the root of every
// snapshot. It is not safe for concurrent use; hosts serialize access.
type Manager struct {
	users    []User
	projects []*Project
}

// NewManager returns an empty manager
func NewManager() *Manager {
	return &Manager{}
}

// UserCount returns the number of registered users
func (m *Manager) UserCount() int { return len(m.users) }

// ProjectCount returns the number of projects
func (m *Manager) ProjectCount() int { return len(m.projects) }

// AddUser registers a new user
func (m *Manager) AddUser(name string) error {
	if findUser(m.users, name) >= 0 {
		return newError(ErrDuplicateName, "User with such name already exists.")
	}
	u, err := NewUser(name)
	if err != nil {
		return err
	}
	m.users = append(m.users, u)
	return nil
}

// RemoveUser unregisters a user. Task executor lists keep their copy of the
// name; removal does not cascade.
func (m *Manager) RemoveUser(name string) error {
	i := findUser(m.users, name)
	if i < 0 {
		return newError(ErrNotFound, "No users with such name found.")
	}
	m.users = append(m.users[:i:i], m.users[i+1:]...)
	return nil
}

// HasUser reports whether name is registered
func (m *Manager) HasUser(name string) bool {
	return findUser(m.users, name) >= 0
}

// Users returns user records in registration order
func (m *Manager) Users() []UserRecord {
	records := make([]UserRecord, len(m.users))
	for i, u := range m.users {
		records[i] = UserRecord{Index: i + 1, Name: u.name}
	}
	return records
}

// ListUsers returns "N. name" lines
func (m *Manager) ListUsers() ([]string, error) {
	if len(m.users) == 0 {
		return nil, newError(ErrEmptyContainer, "List of users is empty.")
	}
	lines := make([]string, len(m.users))
	for i, r := range m.Users() {
		lines[i] = fmt.Sprintf("%d. %s", r.Index, r.Name)
	}
	return lines, nil
}

func (m *Manager) findProject(name string) int {
	for i, p := range m.projects {
		if p.name == name {
			return i
		}
	}
	return -1
}

// CreateProject adds a project capped at maxTasks tasks (1..99)
func (m *Manager) CreateProject(name string, maxTasks int) error {
	if m.findProject(name) >= 0 {
		return newError(ErrDuplicateName, "Project with such name already exists.")
	}
	p, err := newProject(name, maxTasks)
	if err != nil {
		return err
	}
	m.projects = append(m.projects, p)
	return nil
}

// RemoveProject deletes a project and everything it owns
func (m *Manager) RemoveProject(name string) error {
	i := m.findProject(name)
	if i < 0 {
		return newError(ErrNotFound, "Project with name %s not found.", name)
	}
	m.projects = append(m.projects[:i:i], m.projects[i+1:]...)
	return nil
}

// RenameProject changes a project's name. The new name is not checked
// against other projects, so two projects may end up sharing a name; lookups
// then resolve to the first one.
func (m *Manager) RenameProject(oldName, newName string) error {
	i := m.findProject(oldName)
	if i < 0 {
		return newError(ErrNotFound, "Project with name %s not found.", oldName)
	}
	m.projects[i].name = newName
	return nil
}

// Project returns the named project for task-level operations
func (m *Manager) Project(name string) (*Project, error) {
	i := m.findProject(name)
	if i < 0 {
		return nil, newError(ErrNotFound, "Incorrect project name.")
	}
	return m.projects[i], nil
}

// Projects returns project records in creation order
func (m *Manager) Projects() []ProjectRecord {
	records := make([]ProjectRecord, len(m.projects))
	for i, p := range m.projects {
		records[i] = ProjectRecord{Index: i + 1, Name: p.name, MaxTasks: p.maxTasks, TaskCount: len(p.tasks)}
	}
	return records
}

// ProjectRecord describes the named project with its 1-based list index
func (m *Manager) ProjectRecord(name string) (ProjectRecord, error) {
	i := m.findProject(name)
	if i < 0 {
		return ProjectRecord{}, newError(ErrNotFound, "Incorrect project name.")
	}
	p := m.projects[i]
	return ProjectRecord{Index: i + 1, Name: p.name, MaxTasks: p.maxTasks, TaskCount: len(p.tasks)}, nil
}

// ListProjects returns "N. name taskCount" lines
func (m *Manager) ListProjects() ([]string, error) {
	if len(m.projects) == 0 {
		return nil, newError(ErrEmptyContainer, "No active projects yet.")
	}
	lines := make([]string, len(m.projects))
	for i, r := range m.Projects() {
		lines[i] = fmt.Sprintf("%d. %s %d", r.Index, r.Name, r.TaskCount)
	}
	return lines, nil
}

// checkAssignment validates the project and the globally registered user
// before an executor change is delegated.
func (m *Manager) checkAssignment(projectName, userName string) (*Project, error) {
	i := m.findProject(projectName)
	if i < 0 {
		return nil, newError(ErrInvalidProject, "Invalid project name.")
	}
	if !m.HasUser(userName) {
		return nil, newError(ErrInvalidUser, "Invalid username.")
	}
	return m.projects[i], nil
}

// AssignUserToTask assigns a registered user to a task
func (m *Manager) AssignUserToTask(projectName, taskName, userName string) error {
	p, err := m.checkAssignment(projectName, userName)
	if err != nil {
		return err
	}
	return p.AssignUserToTask(taskName, userName)
}

// RemoveUserFromTask unassigns a registered user from a task
func (m *Manager) RemoveUserFromTask(projectName, taskName, userName string) error {
	p, err := m.checkAssignment(projectName, userName)
	if err != nil {
		return err
	}
	return p.RemoveUserFromTask(taskName, userName)
}

// AssignUserToSubtask assigns a registered user to an epic's subtask
func (m *Manager) AssignUserToSubtask(projectName, taskName, subtaskName, userName string) error {
	p, err := m.checkAssignment(projectName, userName)
	if err != nil {
		return err
	}
	epic, err := p.Epic(taskName)
	if err != nil {
		return err
	}
	return epic.AssignUserToSubtask(subtaskName, userName)
}

// RemoveUserFromSubtask unassigns a registered user from an epic's subtask
func (m *Manager) RemoveUserFromSubtask(projectName, taskName, subtaskName, userName string) error {
	p, err := m.checkAssignment(projectName, userName)
	if err != nil {
		return err
	}
	epic, err := p.Epic(taskName)
	if err != nil {
		return err
	}
	return epic.RemoveUserFromSubtask(subtaskName, userName)
}
