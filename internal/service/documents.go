package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/raphaelgruber/creassist/internal/client"
	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/notify"
)

// SupportedExtensions are the file types the backend can index.
var SupportedExtensions = []string{".pdf", ".csv", ".json", ".txt"}

// DocumentStore is the remote knowledge base.
type DocumentStore interface {
	UploadDocuments(ctx context.Context, files []client.UploadFile) (*models.UploadResult, error)
	AddTextDocuments(ctx context.Context, docs []string) (string, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ClearDocuments(ctx context.Context) error
}

// DocumentService uploads and manages knowledge-base documents.
type DocumentService struct {
	base
	store DocumentStore

	mu    sync.Mutex
	stats models.DocumentStats
}

// NewDocumentService creates a new document service.
func NewDocumentService(store DocumentStore, opts ...Option) *DocumentService {
	return &DocumentService{base: newBase(opts), store: store}
}

// Supported reports whether path has an indexable extension.
func Supported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// CollectFiles walks a directory and returns all indexable files.
func CollectFiles(dirPath string, recursive bool) ([]string, error) {
	var files []string
	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !recursive && path != dirPath {
			return filepath.SkipDir
		}
		if !d.IsDir() && Supported(path) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFn); err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	return files, nil
}

// Upload sends the files at paths in one multipart request. The backend
// reports aggregate counts only; a failed request uploads nothing.
func (s *DocumentService) Upload(ctx context.Context, paths []string) (*models.UploadResult, error) {
	if len(paths) == 0 {
		s.notifier.Notify(notify.Warning, "Please select files to upload")
		return nil, ErrNoFiles
	}
	for _, p := range paths {
		if !Supported(p) {
			s.notifier.Notify(notify.Warning, fmt.Sprintf("Unsupported file type: %s", filepath.Base(p)))
			return nil, fmt.Errorf("%s: %w", p, ErrUnsupportedFile)
		}
	}

	files := make([]client.UploadFile, 0, len(paths))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			s.fail("open upload file failed", "Upload failed. Please check your files and try again.", err, "path", p)
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		closers = append(closers, f)
		files = append(files, client.UploadFile{Name: filepath.Base(p), Data: f})
	}

	result, err := s.store.UploadDocuments(ctx, files)
	if err != nil {
		s.fail("upload failed", "Upload failed. Please check your files and try again.", err, "files", len(files))
		return nil, fmt.Errorf("upload documents: %w", err)
	}

	s.mu.Lock()
	s.stats.TotalDocs += result.FilesProcessed
	s.stats.TotalChunks += result.ChunksAdded
	s.mu.Unlock()

	s.logger.Info("documents uploaded", "files", result.FilesProcessed, "chunks", result.ChunksAdded)
	s.notifier.Notify(notify.Success, fmt.Sprintf(
		"Successfully uploaded %d files and added %d text chunks to the knowledge base.",
		result.FilesProcessed, result.ChunksAdded))
	return result, nil
}

// AddText adds raw text snippets to the knowledge base.
func (s *DocumentService) AddText(ctx context.Context, docs []string) (string, error) {
	var texts []string
	for _, d := range docs {
		if d = strings.TrimSpace(d); d != "" {
			texts = append(texts, d)
		}
	}
	if len(texts) == 0 {
		s.notifier.Notify(notify.Warning, "Please enter some text to add")
		return "", ErrNoFiles
	}

	msg, err := s.store.AddTextDocuments(ctx, texts)
	if err != nil {
		s.fail("add text documents failed", "Failed to add documents", err)
		return "", fmt.Errorf("add documents: %w", err)
	}
	s.notifier.Notify(notify.Success, fmt.Sprintf("Added %d documents to the knowledge base.", len(texts)))
	return msg, nil
}

// List returns the indexed documents.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		s.fail("list documents failed", "Failed to load documents", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes one document.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		s.fail("delete document failed", "Failed to delete document", err, "document_id", id)
		return fmt.Errorf("delete document: %w", err)
	}
	s.notifier.Notify(notify.Success, "Document deleted")
	return nil
}

// Clear removes every document and resets the tally.
func (s *DocumentService) Clear(ctx context.Context) error {
	if err := s.store.ClearDocuments(ctx); err != nil {
		s.fail("clear documents failed", "Failed to clear documents", err)
		return fmt.Errorf("clear documents: %w", err)
	}

	s.mu.Lock()
	s.stats = models.DocumentStats{}
	s.mu.Unlock()

	s.notifier.Notify(notify.Success, "All documents cleared")
	return nil
}

// Stats returns the documents and chunks uploaded through this service.
func (s *DocumentService) Stats() models.DocumentStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
