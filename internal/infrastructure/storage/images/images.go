package images

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slog"

	"surveysync/internal/infrastructure/storage"
)

// Image is one captured photo: a file on disk paired with its row in
// the survey_images table.
type Image struct {
	ID        int64     `json:"id"`
	SurveyID  string    `json:"survey_id"`
	PhotoURI  string    `json:"photo_uri"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// FileStore manages survey photos in a dedicated directory. Every
// operation degrades instead of failing the caller: a survey save must
// survive a broken image store with a non-permanent reference.
type FileStore struct {
	handle *storage.Handle
	dir    string
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(fs *FileStore) { fs.now = now }
}

func NewFileStore(handle *storage.Handle, dir string, log *slog.Logger, opts ...Option) *FileStore {
	fs := &FileStore{
		handle: handle,
		dir:    dir,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Dir returns the image directory path.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// Store copies the source file into the image directory under a
// permanent name and records the row. On any file-level failure it
// returns srcURI unchanged so the caller keeps a usable, if
// temporary, reference. A row-insert failure after a successful copy
// is logged only; CleanupOrphans reconciles it later.
func (fs *FileStore) Store(surveyID, srcURI, label string) string {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		fs.log.Warn("image directory unavailable", "dir", fs.dir, "error", err)
		return srcURI
	}

	ext := filepath.Ext(srcURI)
	if ext == "" {
		ext = ".jpg"
	}
	ts := fs.now()
	dst := filepath.Join(fs.dir, fmt.Sprintf("%s_%s_%d%s", surveyID, label, ts.UnixMilli(), ext))

	if err := copyFile(srcURI, dst); err != nil {
		fs.log.Warn("image copy failed", "src", srcURI, "error", err)
		return srcURI
	}

	if !fs.handle.Available() {
		fs.log.Warn("image row not recorded, storage degraded", "survey_id", surveyID, "label", label)
		return dst
	}

	_, err := fs.handle.DB().Exec(`
		INSERT INTO survey_images (survey_id, photo_uri, label, timestamp)
		VALUES (?, ?, ?, ?)
	`, surveyID, dst, label, ts.UTC().Format(time.RFC3339))
	if err != nil {
		// The file stays; the orphan sweep picks it up.
		fs.handle.MarkFailure("images.store", err)
	}

	return dst
}

// List returns the survey's images ordered by capture time. It never
// fails: an unavailable store yields an empty list.
func (fs *FileStore) List(surveyID string) []Image {
	if !fs.handle.Available() {
		return nil
	}

	rows, err := fs.handle.DB().Query(`
		SELECT id, survey_id, photo_uri, label, timestamp
		FROM survey_images
		WHERE survey_id = ?
		ORDER BY timestamp ASC, id ASC
	`, surveyID)
	if err != nil {
		fs.handle.MarkFailure("images.list", err)
		return nil
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			fs.log.Warn("skipping unreadable image row", "error", err)
			continue
		}
		images = append(images, img)
	}

	return images
}

// Delete removes the survey's files and rows. Per-file failures are
// logged and do not abort the loop; the rows are then dropped in one
// statement. Calling it for an already-clean survey is a no-op.
func (fs *FileStore) Delete(surveyID string) error {
	if !fs.handle.Available() {
		return fmt.Errorf("local storage unavailable")
	}

	for _, img := range fs.List(surveyID) {
		if err := os.Remove(img.PhotoURI); err != nil && !os.IsNotExist(err) {
			fs.log.Warn("image file removal failed", "uri", img.PhotoURI, "error", err)
		}
	}

	if _, err := fs.handle.DB().Exec(
		"DELETE FROM survey_images WHERE survey_id = ?", surveyID); err != nil {
		fs.handle.MarkFailure("images.delete", err)
		return fmt.Errorf("delete image rows for %s: %w", surveyID, err)
	}

	return nil
}

// CleanupOrphans reconciles the directory with the table: files with
// no row are removed, rows whose file is gone are dropped. Best
// effort throughout.
func (fs *FileStore) CleanupOrphans() {
	if !fs.handle.Available() {
		return
	}

	rows, err := fs.handle.DB().Query("SELECT id, survey_id, photo_uri, label, timestamp FROM survey_images")
	if err != nil {
		fs.handle.MarkFailure("images.cleanup", err)
		return
	}

	known := make(map[string]Image)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			continue
		}
		known[img.PhotoURI] = img
	}
	rows.Close()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.log.Warn("image directory sweep failed", "dir", fs.dir, "error", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		uri := filepath.Join(fs.dir, entry.Name())
		if _, ok := known[uri]; ok {
			continue
		}
		if err := os.Remove(uri); err != nil {
			fs.log.Warn("orphan file removal failed", "uri", uri, "error", err)
		} else {
			fs.log.Debug("orphan file removed", "uri", uri)
		}
	}

	for uri, img := range known {
		if _, err := os.Stat(uri); os.IsNotExist(err) {
			if _, err := fs.handle.DB().Exec("DELETE FROM survey_images WHERE id = ?", img.ID); err != nil {
				fs.log.Warn("orphan row removal failed", "id", img.ID, "error", err)
			} else {
				fs.log.Debug("orphan row removed", "id", img.ID, "uri", uri)
			}
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(rows scanner) (Image, error) {
	var img Image
	var surveyID sql.NullString
	var ts string

	if err := rows.Scan(&img.ID, &surveyID, &img.PhotoURI, &img.Label, &ts); err != nil {
		return Image{}, err
	}

	img.SurveyID = surveyID.String
	img.Timestamp, _ = time.Parse(time.RFC3339, ts)

	return img, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	return out.Close()
}
