package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

// NameRequest creates a user or renames a project
type NameRequest struct {
	Name string `json:"name"`
}

// ProjectRequest creates a project
type ProjectRequest struct {
	Name     string `json:"name"`
	MaxTasks int    `json:"max_tasks"`
}

// TaskRequest creates a task or subtask
type TaskRequest struct {
	Name  string       `json:"name"`
	Level *types.Level `json:"level"`
}

func (t TaskRequest) check(field string) error {
	if err := checkName(field, t.Name); err != nil {
		return err
	}
	if t.Level == nil {
		return &badRequest{fmt.Errorf("level is required")}
	}
	return nil
}

// StatusRequest changes a task or subtask status
type StatusRequest struct {
	Status *types.Status `json:"status"`
}

func (s StatusRequest) check() error {
	if s.Status == nil {
		return &badRequest{fmt.Errorf("status is required")}
	}
	return nil
}

// CommandRequest runs one console command line
type CommandRequest struct {
	Line string `json:"line"`
}

// LinesResponse carries formatted listing lines
type LinesResponse struct {
	Lines []string `json:"lines"`
}

// ProjectResponse is a project with its tasks
type ProjectResponse struct {
	tracker.ProjectRecord
	Tasks []tracker.TaskRecord `json:"tasks"`
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func checkName(field, name string) error {
	if !command.ValidName(name) {
		return &badRequest{fmt.Errorf("%s %q does not match naming rules (latin letters and digits only)", field, name)}
	}
	return nil
}

func grouped(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("grouped")
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &badRequest{fmt.Errorf("grouped must be a boolean: %q", v)}
	}
	return b, nil
}

// view runs fn under the session lock and writes its result as JSON
func (s *Server) view(w http.ResponseWriter, fn func(m *tracker.Manager) (any, error)) {
	var out any
	err := s.sess.View(func(m *tracker.Manager) error {
		var err error
		out, err = fn(m)
		return err
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// update runs fn under the session lock and answers with status and no body
func (s *Server) update(w http.ResponseWriter, r *http.Request, status int, fn func(m *tracker.Manager) error) {
	if err := s.sess.Update(r.Context(), fn); err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, status, nil)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": s.sess.Describe()})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.view(w, func(m *tracker.Manager) (any, error) {
		return m.Stats(), nil
	})
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	res, err := s.sess.Exec(r.Context(), req.Line)
	if err != nil {
		WriteError(w, err)
		return
	}
	if res.Lines == nil {
		res.Lines = []string{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Save(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": s.sess.LastSnapshotID()})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.view(w, func(m *tracker.Manager) (any, error) {
		return m.Users(), nil
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := checkName("user name", req.Name); err != nil {
		WriteError(w, err)
		return
	}
	s.update(w, r, http.StatusCreated, func(m *tracker.Manager) error {
		return m.AddUser(req.Name)
	})
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["user"]
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.RemoveUser(name)
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.view(w, func(m *tracker.Manager) (any, error) {
		return m.Projects(), nil
	})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := checkName("project name", req.Name); err != nil {
		WriteError(w, err)
		return
	}
	s.update(w, r, http.StatusCreated, func(m *tracker.Manager) error {
		return m.CreateProject(req.Name, req.MaxTasks)
	})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["project"]
	s.view(w, func(m *tracker.Manager) (any, error) {
		rec, err := m.ProjectRecord(name)
		if err != nil {
			return nil, err
		}
		p, err := m.Project(name)
		if err != nil {
			return nil, err
		}
		return ProjectResponse{ProjectRecord: rec, Tasks: p.Tasks()}, nil
	})
}

func (s *Server) renameProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["project"]
	var req NameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := checkName("project name", req.Name); err != nil {
		WriteError(w, err)
		return
	}
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.RenameProject(name, req.Name)
	})
}

func (s *Server) removeProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["project"]
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.RemoveProject(name)
	})
}

// withProject resolves the {project} variable
func withProject(r *http.Request, fn func(p *tracker.Project) error) func(m *tracker.Manager) error {
	name := mux.Vars(r)["project"]
	return func(m *tracker.Manager) error {
		p, err := m.Project(name)
		if err != nil {
			return err
		}
		return fn(p)
	}
}

// withEpic resolves the {project} and {task} variables to an epic
func withEpic(r *http.Request, fn func(e *tracker.EpicTask) error) func(m *tracker.Manager) error {
	task := mux.Vars(r)["task"]
	return withProject(r, func(p *tracker.Project) error {
		e, err := p.Epic(task)
		if err != nil {
			return err
		}
		return fn(e)
	})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	g, err := grouped(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	s.view(w, func(m *tracker.Manager) (any, error) {
		var out any
		err := withProject(r, func(p *tracker.Project) error {
			if g {
				out = p.GroupedTasks()
			} else {
				out = p.Tasks()
			}
			return nil
		})(m)
		return out, err
	})
}

func (s *Server) taskLines(w http.ResponseWriter, r *http.Request) {
	g, err := grouped(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	s.view(w, func(m *tracker.Manager) (any, error) {
		var lines []string
		err := withProject(r, func(p *tracker.Project) error {
			var err error
			if g {
				lines, err = p.ListTasksGroupedByStatus()
			} else {
				lines, err = p.ListTasks()
			}
			return err
		})(m)
		return LinesResponse{Lines: lines}, err
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.check("task name"); err != nil {
		WriteError(w, err)
		return
	}
	s.update(w, r, http.StatusCreated, withProject(r, func(p *tracker.Project) error {
		return p.CreateTask(req.Name, *req.Level)
	}))
}

func (s *Server) removeTask(w http.ResponseWriter, r *http.Request) {
	task := mux.Vars(r)["task"]
	s.update(w, r, http.StatusNoContent, withProject(r, func(p *tracker.Project) error {
		return p.RemoveTask(task)
	}))
}

func (s *Server) changeTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.check(); err != nil {
		WriteError(w, err)
		return
	}
	task := mux.Vars(r)["task"]
	s.update(w, r, http.StatusNoContent, withProject(r, func(p *tracker.Project) error {
		return p.ChangeTaskStatus(task, *req.Status)
	}))
}

func (s *Server) assignTask(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.AssignUserToTask(v["project"], v["task"], v["user"])
	})
}

func (s *Server) unassignTask(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.RemoveUserFromTask(v["project"], v["task"], v["user"])
	})
}

func (s *Server) listSubtasks(w http.ResponseWriter, r *http.Request) {
	g, err := grouped(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	s.view(w, func(m *tracker.Manager) (any, error) {
		var out any
		err := withEpic(r, func(e *tracker.EpicTask) error {
			if g {
				out = e.GroupedSubtasks()
			} else {
				out = e.Subtasks()
			}
			return nil
		})(m)
		return out, err
	})
}

func (s *Server) subtaskLines(w http.ResponseWriter, r *http.Request) {
	g, err := grouped(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	s.view(w, func(m *tracker.Manager) (any, error) {
		var lines []string
		err := withEpic(r, func(e *tracker.EpicTask) error {
			var err error
			if g {
				lines, err = e.ListSubtasksGroupedByStatus()
			} else {
				lines, err = e.ListSubtasks()
			}
			return err
		})(m)
		return LinesResponse{Lines: lines}, err
	})
}

func (s *Server) createSubtask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.check("subtask name"); err != nil {
		WriteError(w, err)
		return
	}
	s.update(w, r, http.StatusCreated, withEpic(r, func(e *tracker.EpicTask) error {
		return e.AddSubtask(req.Name, *req.Level)
	}))
}

func (s *Server) removeSubtask(w http.ResponseWriter, r *http.Request) {
	sub := mux.Vars(r)["subtask"]
	s.update(w, r, http.StatusNoContent, withEpic(r, func(e *tracker.EpicTask) error {
		return e.RemoveSubtask(sub)
	}))
}

func (s *Server) changeSubtaskStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.check(); err != nil {
		WriteError(w, err)
		return
	}
	sub := mux.Vars(r)["subtask"]
	s.update(w, r, http.StatusNoContent, withEpic(r, func(e *tracker.EpicTask) error {
		return e.ChangeSubtaskStatus(sub, *req.Status)
	}))
}

func (s *Server) assignSubtask(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.AssignUserToSubtask(v["project"], v["task"], v["subtask"], v["user"])
	})
}

func (s *Server) unassignSubtask(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	s.update(w, r, http.StatusNoContent, func(m *tracker.Manager) error {
		return m.RemoveUserFromSubtask(v["project"], v["task"], v["subtask"], v["user"])
	})
}
