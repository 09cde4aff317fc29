package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/fsys"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
)

// ErrNoSubtree is returned when the cursor is on a blank line.
var ErrNoSubtree = errors.New("nothing to archive at the cursor")

// FileHeader opens every block appended to an archive file.
const FileHeader = "--- ✄ -----------------------"

// IOError reports a failed write to the archive file.
type IOError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("writing archive %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// FileResult describes an archive-to-file run.
type FileResult struct {
	Tx   *buffer.Transaction
	Path string
	// Notice is set when the configured mask was unusable and the default
	// mask was used instead.
	Notice error
}

var placeholder = regexp.MustCompile(`\{[^}]*\}`)

// FilePath expands mask for the document at docPath. Supported
// placeholders are {dir}, {base}, {ext} and {sep}.
func FilePath(mask, docPath string) (string, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(abs)
	values := map[string]string{
		"{dir}":  filepath.Dir(abs),
		"{base}": strings.TrimSuffix(filepath.Base(abs), ext),
		"{ext}":  ext,
		"{sep}":  string(filepath.Separator),
	}

	if strings.TrimSpace(mask) == "" {
		return "", fmt.Errorf("%w: empty", config.ErrInvalidMask)
	}
	var bad []string
	out := placeholder.ReplaceAllStringFunc(mask, func(p string) string {
		v, ok := values[p]
		if !ok {
			bad = append(bad, p)
		}
		return v
	})
	if len(bad) > 0 {
		return "", fmt.Errorf("%w: unknown placeholder %s", config.ErrInvalidMask, strings.Join(bad, ", "))
	}
	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("%w: unbalanced braces", config.ErrInvalidMask)
	}
	out = filepath.Clean(out)
	if out == filepath.Clean(abs) {
		return "", fmt.Errorf("%w: archive file is the document itself", config.ErrInvalidMask)
	}
	return out, nil
}

// ToFile appends the line at pos and the lines indented below it to the
// archive file of docPath on fs, then erases them from the document. The
// document is only changed after the write succeeded.
func ToFile(fs fsys.FS, doc *outline.Document, s config.Settings, docPath string, pos int, now time.Time) (FileResult, error) {
	var res FileResult

	path, err := FilePath(s.ArchiveFileMask, docPath)
	if err != nil {
		res.Notice = &config.ConfigError{
			Key:      "archive_file_mask",
			Value:    s.ArchiveFileMask,
			Fallback: config.DefaultArchiveFileMask,
			Err:      err,
		}
		if path, err = FilePath(config.DefaultArchiveFileMask, docPath); err != nil {
			return res, err
		}
	}
	res.Path = path

	buf := doc.Buffer()
	head := buf.Line(pos)
	if strings.TrimSpace(buf.Substr(head)) == "" {
		return res, ErrNoSubtree
	}
	subtree := head
	if body := buf.IndentedRegion(pos); !body.Empty() {
		subtree.End = body.End
	}

	block := "\n" + FileHeader + "\nArchived " + strftime.Format(s.DateFormat, now) + ":\n" + buf.Substr(subtree) + "\n"
	if err := appendFile(fs, path, block); err != nil {
		return res, &IOError{Path: path, Err: err}
	}

	res.Tx, err = buf.Edit("archive to file", func() error {
		return buf.Erase(buf.FullLine(region.New(subtree.Begin, subtree.End)))
	})
	return res, err
}

func appendFile(fs fsys.FS, path, text string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fs.AppendFile(path, []byte(text))
}
