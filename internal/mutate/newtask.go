package mutate

import (
	"strings"

	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// NewTask adds a pending task for every line touched by sel. Below a task
// or separator the new task gets the same indentation; below a project it
// is indented one unit deeper. Blank and note lines are turned into tasks
// in place. Result.Carets holds the final offset after each new bullet.
func (e *Engine) NewTask(sel []region.Region) (Result, error) {
	var lines []region.Region
	for _, r := range sel {
		lines = append(lines, e.buf().Lines(r)...)
	}
	region.Sort(lines)
	lines = region.Dedup(lines)

	bullet := e.settings.PendingTask + e.settings.TasksBulletSpace
	batch := region.NewBatch()
	var carets []region.Handle

	tx, err := e.buf().Edit("new task", func() error {
		for i := len(lines) - 1; i >= 0; i-- {
			l := lines[i]
			text := e.buf().Substr(l)
			indent := text[:len(text)-len(strings.TrimLeft(text, " \t"))]

			kind := scope.KindBlank
			if node, ok := e.doc.Index().LineAt(l.Begin); ok {
				kind = node.Kind
			}

			switch kind {
			case scope.KindTask, scope.KindSeparator, scope.KindProject:
				if kind == scope.KindProject {
					indent += e.settings.Indent
				}
				ins := "\n" + indent + bullet
				n, err := e.buf().Insert(l.End, ins)
				if err != nil {
					return err
				}
				batch.Apply(region.Insertion(l.End, n))
				carets = append(carets, batch.Track(region.Point(l.End+n)))

			default:
				line := indent + bullet + strings.TrimLeft(text, " \t")
				n, err := e.buf().Replace(l, line)
				if err != nil {
					return err
				}
				switch {
				case n > 0:
					batch.Apply(region.Insertion(l.Begin, n))
				case n < 0:
					batch.Apply(region.Deletion(l.Begin, -n))
				}
				carets = append(carets, batch.Track(region.Point(l.Begin+len(indent)+len(bullet))))
			}
		}
		return nil
	})

	res := Result{Tx: tx}
	for i := len(carets) - 1; i >= 0; i-- {
		res.Carets = append(res.Carets, batch.Get(carets[i]).Begin)
	}
	return res, err
}
