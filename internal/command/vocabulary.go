package command

import (
	"strconv"

	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

var (
	argUser     = Arg{"username", ArgName}
	argProject  = Arg{"projectname", ArgName}
	argTask     = Arg{"taskname", ArgName}
	argSubtask  = Arg{"subtaskname", ArgName}
	argLevel    = Arg{"tasklevel", ArgLevel}
	argSubLevel = Arg{"subtasklevel", ArgLevel}
	argStatus   = Arg{"newstatus", ArgStatus}
)

// order is the help listing order
var order []string

func add(name string, args []Arg, mutates bool, run Handler) {
	register(&Command{Name: name, Args: args, Mutates: mutates, run: run})
	order = append(order, name)
}

func init() {
	add("createuser", []Arg{argUser}, true, createUser)
	add("userlist", nil, false, userList)
	add("removeuser", []Arg{argUser}, true, removeUser)
	add("createproject", []Arg{argProject, {"maxtasksvalue", ArgCapacity}}, true, createProject)
	add("projectlist", nil, false, projectList)
	add("changeprojectname", []Arg{{"oldname", ArgName}, {"newname", ArgName}}, true, changeProjectName)
	add("removeproject", []Arg{argProject}, true, removeProject)
	add("addtasktoproject", []Arg{argProject, argTask, argLevel}, true, addTaskToProject)
	add("addusertotask", []Arg{argProject, argTask, argUser}, true, addUserToTask)
	add("removeuserfromtask", []Arg{argProject, argTask, argUser}, true, removeUserFromTask)
	add("changetaskstatus", []Arg{argProject, argTask, argStatus}, true, changeTaskStatus)
	add("tasklist", []Arg{argProject}, false, taskList)
	add("groupedtasklist", []Arg{argProject}, false, groupedTaskList)
	add("removetaskfromproject", []Arg{argProject, argTask}, true, removeTaskFromProject)
	add("addsubtasktoepictask", []Arg{argProject, argTask, argSubtask, argSubLevel}, true, addSubtaskToEpicTask)
	add("removesubtaskfromepictask", []Arg{argProject, argTask, argSubtask}, true, removeSubtaskFromEpicTask)
	add("changeepictasksubtaskstatus", []Arg{argProject, argTask, argSubtask, argStatus}, true, changeEpicTaskSubtaskStatus)
	add("epictasksubtasklist", []Arg{argProject, argTask}, false, epicTaskSubtaskList)
	add("epictaskgroupedsubtasklist", []Arg{argProject, argTask}, false, epicTaskGroupedSubtaskList)
	add("addusertoepictasksubtask", []Arg{argProject, argTask, argSubtask, argUser}, true, addUserToEpicTaskSubtask)
	add("removeuserfromepictasksubtask", []Arg{argProject, argTask, argSubtask, argUser}, true, removeUserFromEpicTaskSubtask)
}

func done(msg string) ([]string, error) {
	return []string{msg}, nil
}

func createUser(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.AddUser(args[0]); err != nil {
		return nil, err
	}
	return done("User " + args[0] + " created.")
}

func userList(m *tracker.Manager, _ []string) ([]string, error) {
	return m.ListUsers()
}

func removeUser(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.RemoveUser(args[0]); err != nil {
		return nil, err
	}
	return done("User " + args[0] + " removed.")
}

func createProject(m *tracker.Manager, args []string) ([]string, error) {
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, err
	}
	if err := m.CreateProject(args[0], n); err != nil {
		return nil, err
	}
	return done("Project " + args[0] + " created.")
}

func projectList(m *tracker.Manager, _ []string) ([]string, error) {
	return m.ListProjects()
}

func changeProjectName(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.RenameProject(args[0], args[1]); err != nil {
		return nil, err
	}
	return done("Project " + args[0] + " renamed to " + args[1] + ".")
}

func removeProject(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.RemoveProject(args[0]); err != nil {
		return nil, err
	}
	return done("Project " + args[0] + " removed.")
}

func addTaskToProject(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	level, err := types.ParseLevel(args[2])
	if err != nil {
		return nil, err
	}
	if err := p.CreateTask(args[1], level); err != nil {
		return nil, err
	}
	return done("Task " + args[1] + " added to project " + args[0] + ".")
}

func addUserToTask(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.AssignUserToTask(args[0], args[1], args[2]); err != nil {
		return nil, err
	}
	return done("User " + args[2] + " assigned to task " + args[1] + ".")
}

func removeUserFromTask(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.RemoveUserFromTask(args[0], args[1], args[2]); err != nil {
		return nil, err
	}
	return done("User " + args[2] + " removed from task " + args[1] + ".")
}

func changeTaskStatus(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	status, err := types.ParseStatus(args[2])
	if err != nil {
		return nil, err
	}
	if err := p.ChangeTaskStatus(args[1], status); err != nil {
		return nil, err
	}
	return done("Task " + args[1] + " is now " + status.Label() + ".")
}

func taskList(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	return p.ListTasks()
}

func groupedTaskList(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	return p.ListTasksGroupedByStatus()
}

func removeTaskFromProject(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	if err := p.RemoveTask(args[1]); err != nil {
		return nil, err
	}
	return done("Task " + args[1] + " removed from project " + args[0] + ".")
}

func addSubtaskToEpicTask(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	level, err := types.ParseLevel(args[3])
	if err != nil {
		return nil, err
	}
	if err := p.AddSubtaskToEpic(args[1], args[2], level); err != nil {
		return nil, err
	}
	return done("Subtask " + args[2] + " added to epic task " + args[1] + ".")
}

func removeSubtaskFromEpicTask(m *tracker.Manager, args []string) ([]string, error) {
	p, err := m.Project(args[0])
	if err != nil {
		return nil, err
	}
	if err := p.RemoveSubtaskFromEpic(args[1], args[2]); err != nil {
		return nil, err
	}
	return done("Subtask " + args[2] + " removed from epic task " + args[1] + ".")
}

func epic(m *tracker.Manager, projectName, taskName string) (*tracker.EpicTask, error) {
	p, err := m.Project(projectName)
	if err != nil {
		return nil, err
	}
	return p.Epic(taskName)
}

func changeEpicTaskSubtaskStatus(m *tracker.Manager, args []string) ([]string, error) {
	e, err := epic(m, args[0], args[1])
	if err != nil {
		return nil, err
	}
	status, err := types.ParseStatus(args[3])
	if err != nil {
		return nil, err
	}
	if err := e.ChangeSubtaskStatus(args[2], status); err != nil {
		return nil, err
	}
	return done("Subtask " + args[2] + " is now " + status.Label() + ".")
}

func epicTaskSubtaskList(m *tracker.Manager, args []string) ([]string, error) {
	e, err := epic(m, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return e.ListSubtasks()
}

func epicTaskGroupedSubtaskList(m *tracker.Manager, args []string) ([]string, error) {
	e, err := epic(m, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return e.ListSubtasksGroupedByStatus()
}

func addUserToEpicTaskSubtask(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.AssignUserToSubtask(args[0], args[1], args[2], args[3]); err != nil {
		return nil, err
	}
	return done("User " + args[3] + " assigned to subtask " + args[2] + ".")
}

func removeUserFromEpicTaskSubtask(m *tracker.Manager, args []string) ([]string, error) {
	if err := m.RemoveUserFromSubtask(args[0], args[1], args[2], args[3]); err != nil {
		return nil, err
	}
	return done("User " + args[3] + " removed from subtask " + args[2] + ".")
}
