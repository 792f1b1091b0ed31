package demo

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/effects"
	"github.com/roach88/strata/internal/entity"
	"github.com/roach88/strata/internal/lazy"
	"github.com/roach88/strata/internal/reduce"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/tree"
)

// Task is the demo domain entity.
type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Action types understood by the demo application.
const (
	TaskAdded     = "task/added"
	TaskCompleted = "task/completed"
	TaskRemoved   = "task/removed"
	FilterSet     = "ui/filterSet"
	StatsUpdated  = "stats/updated"
)

// StatsKey is the lazily loaded top-level slice maintained by the stats
// effect.
const StatsKey = "stats"

// TaskAdapter returns the adapter used for the task collection: ids from
// the task's ID field, ordered by name under English collation.
func TaskAdapter() entity.Adapter[Task] {
	byName := entity.LocaleCompare(language.English)
	return entity.NewAdapter(
		func(t Task) string { return t.ID },
		entity.WithSortComparer(func(a, b Task) int { return byName(a.Name, b.Name) }),
	)
}

// App owns one fully wired store instance.
type App struct {
	Store    *store.Store
	UI       *store.SubStore
	Registry *lazy.Registry

	adapter     entity.Adapter[Task]
	runner      *effects.Runner
	unloadStats func()
	log         *slog.Logger
}

// AppOption configures New.
type AppOption func(*App)

// WithAppLogger sets the application logger.
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.log = logger
		}
	}
}

// New builds the demo application on a fresh reducer service: root
// reducer for the task collection, a sub-store owning the "ui" slice, a
// lazily loaded "stats" slice, and a selector-driven effect that
// recomputes stats after every task change.
func New(opts ...AppOption) (*App, error) {
	a := &App{
		Registry: lazy.NewRegistry(),
		adapter:  TaskAdapter(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Store = store.New(reduce.NewService(), store.WithLogger(a.log))

	root := tasksReducer(a.adapter)
	a.Registry.SetBaseReducer(root)
	if err := a.Store.Configure(a.Registry.Combined(), nil, nil); err != nil {
		return nil, fmt.Errorf("demo: configure store: %w", err)
	}

	a.UI = a.Store.ConfigureSubStore(tree.Path{"ui"}, uiReducer)

	unload, err := a.Registry.LoadReducer(StatsKey, statsReducer, a.Store)
	if err != nil {
		return nil, fmt.Errorf("demo: load stats slice: %w", err)
	}
	a.unloadStats = unload

	runner, err := effects.RunSelector(a.Store, SelectTasks, statsEffect(a.adapter),
		effects.WithPolicy(effects.Concat), effects.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("demo: start stats effect: %w", err)
	}
	a.runner = runner
	return a, nil
}

// Dispatch forwards to the store.
func (a *App) Dispatch(act action.Action) error {
	return a.Store.Dispatch(act)
}

// Settle blocks until every effect activation triggered so far has
// finished. Scenario steps call this to observe a quiescent state.
func (a *App) Settle() {
	a.runner.Wait()
}

// Close stops the effect and unloads the stats slice. Idempotent.
func (a *App) Close() {
	a.runner.Destroy()
	if a.unloadStats != nil {
		a.unloadStats()
		a.unloadStats = nil
	}
}

// tasksReducer manages the "tasks" slice of the root tree and seeds the
// defaults for every slice the application owns.
func tasksReducer(ad entity.Adapter[Task]) action.Reducer {
	return func(state any, a action.Action) any {
		m, ok := state.(map[string]any)
		if !ok {
			m = map[string]any{
				"tasks": entity.NewState[Task](),
				"ui":    map[string]any{"filter": "all"},
			}
		}
		cur, _ := m["tasks"].(*entity.State[Task])
		if cur == nil {
			cur = entity.NewState[Task]()
		}

		var next *entity.State[Task]
		switch a.Type {
		case TaskAdded:
			t, err := taskFromPayload(a.Payload)
			if err != nil {
				return m
			}
			next = ad.AddOne(cur, t)
		case TaskCompleted:
			id, ok := payloadID(a.Payload)
			if !ok {
				return m
			}
			next = ad.UpdateOne(cur, entity.Update[Task]{
				ID:      id,
				Changes: func(t Task) Task { t.Done = true; return t },
			})
		case TaskRemoved:
			id, ok := payloadID(a.Payload)
			if !ok {
				return m
			}
			next = ad.RemoveOne(cur, id)
		default:
			return m
		}

		if next == cur {
			return m
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		out["tasks"] = next
		return out
	}
}

// uiReducer is the sub-store's local reducer for the "ui" slice.
func uiReducer(state any, a action.Action) any {
	m, ok := state.(map[string]any)
	if !ok {
		m = map[string]any{"filter": "all"}
	}
	if a.Type != FilterSet {
		return m
	}
	filter, ok := a.Payload.(string)
	if !ok {
		return m
	}
	if m["filter"] == filter {
		return m
	}
	return map[string]any{"filter": filter}
}

// statsReducer owns the lazily loaded "stats" slice. The slice exists
// only after LoadReducer ran; its init action seeds the zero counts.
func statsReducer(state any, a action.Action) any {
	m, ok := state.(map[string]any)
	if !ok {
		m = map[string]any{"total": 0, "completed": 0}
	}
	if a.Type != StatsUpdated {
		return m
	}
	counts, ok := a.Payload.(map[string]any)
	if !ok {
		return m
	}
	if m["total"] == counts["total"] && m["completed"] == counts["completed"] {
		return m
	}
	return map[string]any{"total": counts["total"], "completed": counts["completed"]}
}

// statsEffect recomputes the stats slice from the task collection.
func statsEffect(ad entity.Adapter[Task]) effects.Effect {
	all := ad.Selectors().SelectAll
	return func(_ context.Context, value any) (action.Action, error) {
		s, _ := value.(*entity.State[Task])
		if s == nil {
			return action.Action{}, nil
		}
		completed := 0
		for _, t := range all(s) {
			if t.Done {
				completed++
			}
		}
		return action.Action{
			Type:    StatsUpdated,
			Payload: map[string]any{"total": len(s.IDs), "completed": completed},
		}, nil
	}
}

func taskFromPayload(payload any) (Task, error) {
	switch p := payload.(type) {
	case Task:
		return p, nil
	case map[string]any:
		id, _ := p["id"].(string)
		name, _ := p["name"].(string)
		done, _ := p["done"].(bool)
		if id == "" {
			return Task{}, fmt.Errorf("demo: task payload missing id")
		}
		return Task{ID: id, Name: name, Done: done}, nil
	default:
		return Task{}, fmt.Errorf("demo: unsupported task payload %T", payload)
	}
}

func payloadID(payload any) (string, bool) {
	switch p := payload.(type) {
	case string:
		return p, true
	case map[string]any:
		id, ok := p["id"].(string)
		return id, ok
	default:
		return "", false
	}
}
