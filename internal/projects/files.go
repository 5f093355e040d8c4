package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/server/respond"
	"ops-backend/internal/shared/storage/object"
	"ops-backend/internal/shared/telemetry"
	"ops-backend/internal/shared/util"
	"ops-backend/internal/shared/validate"
)

// FilesNamespace is the object store directory for project uploads.
const FilesNamespace = "project_files"

const (
	maxUploadBytes  = 32 << 20
	maxUploadMemory = 8 << 20

	fileTypeMessage    = "Only PDF, Excel, or Word documents are allowed."
	noFileMessage      = "No file was submitted."
	notAFileMessage    = "The submitted data was not a file. Check the encoding type on the form."
	fileNameMessage    = "Invalid file name."
	projectTypeMessage = "Incorrect type. Expected pk value, received str."
)

// ErrUnsupportedFile is returned by DeriveFileMeta for extensions outside
// the allowed document types.
var ErrUnsupportedFile = errors.New("unsupported file type")

var fileTypes = map[string]string{
	".pdf":  "pdf",
	".xlsx": "excel",
	".xls":  "excel",
	".docx": "word",
	".doc":  "word",
}

// DeriveFileMeta maps an upload's file name to the stored file name (base
// name without extension) and file type.
func DeriveFileMeta(filename string) (name, fileType string, err error) {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	ext := path.Ext(base)
	fileType, ok := fileTypes[strings.ToLower(ext)]
	if !ok {
		return "", "", ErrUnsupportedFile
	}
	return strings.TrimSuffix(base, ext), fileType, nil
}

// File is a document attached to a project. Path is the object store key.
type File struct {
	ID         int64
	ProjectID  *int64
	Name       string
	Type       string
	Path       string
	UploadedAt time.Time

	// uploaded marks rows whose object was written by the current request.
	uploaded bool
}

// FileInput carries the project and, when present, the uploaded file. A
// client supplied file_type or file_name is ignored.
type FileInput struct {
	ProjectID *int64                `json:"project_id"`
	Upload    *multipart.FileHeader `json:"-" validate:"-"`
}

var FileTable = crud.Table[File]{
	Name:      "project_files",
	Key:       "project_file_id",
	Columns:   []string{"project_id", "file_name", "file_type", "file_path"},
	Generated: []string{"uploaded_at"},
	Scan: func(s crud.Scanner) (File, error) {
		var f File
		var project sql.NullInt64
		if err := s.Scan(&f.ID, &project, &f.Name, &f.Type, &f.Path, &f.UploadedAt); err != nil {
			return File{}, err
		}
		f.ProjectID = nullInt(project)
		return f, nil
	},
	Values: func(f File) []any { return []any{f.ProjectID, f.Name, f.Type, f.Path} },
}

type fileResource struct {
	objects object.ObjectStore
}

func newFileResource(store crud.Store[File], objects object.ObjectStore) *crud.Resource[File, FileInput] {
	fr := fileResource{objects: objects}
	return &crud.Resource[File, FileInput]{
		Name:  "project file",
		Path:  "/project_files",
		Store: store,
		FromModel: func(f File) FileInput {
			return FileInput{ProjectID: f.ProjectID}
		},
		Decode:      decodeFileInput,
		Check:       checkFileInput,
		ToModel:     fr.toModel,
		Present:     presentFile,
		Discard:     fr.discard,
		AfterUpdate: fr.afterUpdate,
		AfterDelete: fr.afterDelete,
	}
}

// decodeFileInput reads multipart forms and falls back to JSON, which can
// only move a file to another project.
func decodeFileInput(c *gin.Context, in *FileInput) error {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return crud.DecodeJSON(c, in)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		return validate.Errors{"file_path": notAFileMessage}
	}

	if raw, ok := c.GetPostForm("project_id"); ok {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			in.ProjectID = nil
		} else {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return validate.Errors{"project_id": projectTypeMessage}
			}
			in.ProjectID = &id
		}
	}

	header, err := c.FormFile("file_path")
	switch {
	case err == nil:
		in.Upload = header
	case errors.Is(err, http.ErrMissingFile):
	default:
		return validate.Errors{"file_path": notAFileMessage}
	}
	return nil
}

// checkFileInput requires a file on create. Updates without a file keep
// the stored one.
func checkFileInput(_ context.Context, in *FileInput, existing *File) validate.Errors {
	if in.Upload == nil {
		if existing == nil {
			return validate.Errors{"file_path": noFileMessage}
		}
		return nil
	}
	if _, _, err := DeriveFileMeta(in.Upload.Filename); err != nil {
		return validate.Errors{"file_path": fileTypeMessage}
	}
	if _, err := util.SanitizeFileName(in.Upload.Filename); err != nil {
		return validate.Errors{"file_path": fileNameMessage}
	}
	return nil
}

func (fr fileResource) toModel(ctx context.Context, in FileInput, existing *File) (File, error) {
	out := File{ProjectID: in.ProjectID}
	if existing != nil {
		out.Name, out.Type, out.Path, out.UploadedAt = existing.Name, existing.Type, existing.Path, existing.UploadedAt
	}
	if in.Upload == nil {
		return out, nil
	}

	name, fileType, err := DeriveFileMeta(in.Upload.Filename)
	if err != nil {
		return File{}, validate.Errors{"file_path": fileTypeMessage}
	}
	src, err := in.Upload.Open()
	if err != nil {
		return File{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	obj, err := fr.objects.Save(ctx, FilesNamespace, in.Upload.Filename, src)
	if err != nil {
		return File{}, fmt.Errorf("store upload: %w", err)
	}
	out.Name, out.Type, out.Path, out.uploaded = name, fileType, obj.Key, true
	return out, nil
}

func (fr fileResource) discard(ctx context.Context, f File) {
	if f.uploaded {
		fr.remove(ctx, f.Path)
	}
}

func (fr fileResource) afterUpdate(ctx context.Context, previous, saved File) {
	if previous.Path != "" && previous.Path != saved.Path {
		fr.remove(ctx, previous.Path)
	}
}

func (fr fileResource) afterDelete(ctx context.Context, f File) {
	fr.remove(ctx, f.Path)
}

func (fr fileResource) remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := fr.objects.Delete(ctx, key); err != nil {
		telemetry.Warn("project_files.remove_failed", map[string]any{"key": key, "error": err})
	}
}

func presentFile(f File) any {
	return gin.H{
		"project_file_id": f.ID,
		"project_id":      f.ProjectID,
		"file_name":       f.Name,
		"file_type":       f.Type,
		"file_path":       f.Path,
		"file_url":        fmt.Sprintf("/project_files/%d/download/", f.ID),
		"uploaded_at":     f.UploadedAt,
	}
}

// downloadFile streams the stored document as an attachment.
func (h *Handler) downloadFile(c *gin.Context) {
	id, ok := h.Files.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	f, err := h.Files.Store.Get(ctx, id)
	if err != nil {
		h.Files.Fail(c, "download", err)
		return
	}

	rc, err := h.Objects.Open(ctx, f.Path)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Not found.", nil)
			return
		}
		h.Files.Fail(c, "download", err)
		return
	}
	defer rc.Close()

	contentType, body, err := object.Sniff(rc)
	if err != nil {
		h.Files.Fail(c, "download", err)
		return
	}
	filename := f.Name + path.Ext(f.Path)
	c.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}
