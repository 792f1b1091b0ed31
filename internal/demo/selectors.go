package demo

import (
	"github.com/roach88/strata/internal/entity"
	"github.com/roach88/strata/internal/selector"
)

// SelectTasks narrows the root tree to the task collection.
func SelectTasks(state any) any {
	m, ok := state.(map[string]any)
	if !ok {
		return nil
	}
	return m["tasks"]
}

// SelectFilter narrows the root tree to the active ui filter.
func SelectFilter(state any) any {
	m, ok := state.(map[string]any)
	if !ok {
		return nil
	}
	ui, ok := m["ui"].(map[string]any)
	if !ok {
		return nil
	}
	return ui["filter"]
}

// SelectStats narrows the root tree to the stats slice, nil until the
// slice is loaded.
func SelectStats(state any) any {
	m, ok := state.(map[string]any)
	if !ok {
		return nil
	}
	return m[StatsKey]
}

// NewVisibleTasks builds the memoized visible-task selector: the task
// collection filtered by the ui filter ("all", "active" or "done"),
// recomputed only when the collection or the filter actually changes.
func NewVisibleTasks() *selector.Memoized {
	return selector.MustNew(func(inputs ...any) any {
		s, _ := inputs[0].(*entity.State[Task])
		filter, _ := inputs[1].(string)
		if s == nil {
			return []Task{}
		}
		visible := make([]Task, 0, len(s.IDs))
		for _, id := range s.IDs {
			t := s.Entities[id]
			switch filter {
			case "active":
				if t.Done {
					continue
				}
			case "done":
				if !t.Done {
					continue
				}
			}
			visible = append(visible, t)
		}
		return visible
	}, SelectTasks, SelectFilter)
}
