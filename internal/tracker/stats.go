package tracker

import "github.com/steveyegge/projctl/internal/types"

// Stats summarizes the whole graph
type Stats struct {
	Users    int                  `json:"users"`
	Projects int                  `json:"projects"`
	Tasks    int                  `json:"tasks"`
	Subtasks int                  `json:"subtasks"`
	ByStatus map[types.Status]int `json:"by_status"`
}

// Stats counts users, projects, tasks and subtasks. ByStatus covers tasks and
// subtasks alike.
func (m *Manager) Stats() Stats {
	s := Stats{
		Users:    len(m.users),
		Projects: len(m.projects),
		ByStatus: make(map[types.Status]int, len(types.Statuses)),
	}
	for _, status := range types.Statuses {
		s.ByStatus[status] = 0
	}
	for _, p := range m.projects {
		for _, t := range p.tasks {
			s.Tasks++
			s.ByStatus[t.Status()]++
			if epic, ok := t.AsEpic(); ok {
				for _, sub := range epic.subtasks {
					s.Subtasks++
					s.ByStatus[sub.Status()]++
				}
			}
		}
	}
	return s
}
