// Package dataset manages the input CSV files behind the slideshow:
// listing, toggling, upload, delete, backup/restore and encryption.
package dataset

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"coffeeslides/internal/config"
	apphttp "coffeeslides/internal/http"
	"coffeeslides/internal/services/dataloader"
	"coffeeslides/internal/services/storage"
	"coffeeslides/internal/templates"
	"coffeeslides/testdata"
)

const (
	maxUploadSize  = 10 << 20
	maxRestoreSize = 50 << 20
)

var (
	loader   *dataloader.DataLoader
	renderer *templates.Renderer
	cfg      *config.Config
	store    *storage.Storage
	reload   func() error
	log      *zap.SugaredLogger
)

// Initialize sets up the dataset package with required dependencies.
// onChange is called after every change to the input files.
func Initialize(l *dataloader.DataLoader, r *templates.Renderer, c *config.Config, s *storage.Storage, onChange func() error) {
	loader = l
	renderer = r
	cfg = c
	store = s
	reload = onChange
	log = zap.S().Named("dataset")
}

// RegisterRoutes registers all dataset routes
func RegisterRoutes(r chi.Router) {
	r.Get("/dataset/files", handleFileList)
	r.Post("/dataset/files/toggle", handleFileToggle)
	r.Post("/dataset/upload", handleFileUpload)
	r.Delete("/dataset/files/{filename}", handleFileDelete)
	r.Post("/dataset/reload", handleReload)
	r.Post("/dataset/sample", handleRestoreSample)
	r.Get("/dataset/backup", handleBackup)
	r.Post("/dataset/restore", handleRestore)
	r.Post("/dataset/unlock", handleUnlock)
	r.Post("/dataset/lock", handleLock)
	r.Post("/dataset/encryption/enable", handleEnableEncryption)
	r.Post("/dataset/encryption/disable", handleDisableEncryption)
}

// renderFileList answers with the file-list partial, or JSON when no
// templates are loaded
func renderFileList(w http.ResponseWriter, status int, notice string) {
	files, err := loader.GetFileInfo()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	partialData := map[string]interface{}{
		"Files":     files,
		"Encrypted": store.IsEncrypted(),
		"Unlocked":  store.IsUnlocked(),
		"Notice":    notice,
	}
	apphttp.RenderPartial(w, renderer, "file-list", partialData, status)
}

// changed rebuilds the slideshow and reports the outcome for the page
func changed() string {
	if reload == nil {
		return ""
	}
	if err := reload(); err != nil {
		return "Data unavailable: " + err.Error()
	}
	return ""
}

func handleFileList(w http.ResponseWriter, r *http.Request) {
	renderFileList(w, http.StatusOK, "")
}

func handleFileToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := r.FormValue("file")
	enabled := r.FormValue("enabled") == "true"

	files, err := loader.GetFileInfo()
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var enabledFiles []string
	found := false
	for _, f := range files {
		if f.Name == filename {
			found = true
			if enabled {
				enabledFiles = append(enabledFiles, f.Name)
			}
		} else if f.Enabled {
			enabledFiles = append(enabledFiles, f.Name)
		}
	}
	if !found {
		apphttp.ErrorResponse(w, "File not found", http.StatusNotFound)
		return
	}
	// an empty list would mean "load everything"
	if len(enabledFiles) == 0 {
		apphttp.ErrorResponse(w, "At least one file must stay enabled", http.StatusBadRequest)
		return
	}

	loader.SetEnabledFiles(enabledFiles)
	renderFileList(w, http.StatusOK, changed())
}

func handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apphttp.ErrorResponse(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") || !validName(name) {
		apphttp.ErrorResponse(w, "Only CSV files are allowed", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	if err := store.WriteFile(filepath.Join(cfg.UploadsDirectory, name), data, 0644); err != nil {
		if errors.Is(err, storage.ErrLocked) {
			apphttp.ErrorResponse(w, "Data directory is locked", http.StatusLocked)
			return
		}
		apphttp.ErrorResponse(w, "Error saving file", http.StatusInternalServerError)
		return
	}

	log.Infof("Uploaded file: %s", name)
	renderFileList(w, http.StatusOK, changed())
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func handleFileDelete(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		apphttp.ErrorResponse(w, "Invalid filename encoding", http.StatusBadRequest)
		return
	}
	if !validName(filename) {
		apphttp.ErrorResponse(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(cfg.UploadsDirectory, filename)
	if _, err := store.Stat(filePath); os.IsNotExist(err) {
		apphttp.ErrorResponse(w, "File not found", http.StatusNotFound)
		return
	}
	if err := store.Remove(filePath); err != nil {
		apphttp.ErrorResponse(w, "Error deleting file", http.StatusInternalServerError)
		return
	}

	log.Infof("Deleted file: %s", filename)
	renderFileList(w, http.StatusOK, changed())
}

func handleReload(w http.ResponseWriter, r *http.Request) {
	if reload == nil {
		renderFileList(w, http.StatusOK, "")
		return
	}
	if err := reload(); err != nil {
		renderFileList(w, http.StatusServiceUnavailable, "Data unavailable: "+err.Error())
		return
	}
	renderFileList(w, http.StatusOK, "")
}

// handleRestoreSample writes the bundled sample export into the uploads
// directory
func handleRestoreSample(w http.ResponseWriter, r *http.Request) {
	data, err := testdata.SampleFS.ReadFile(testdata.SampleFile)
	if err != nil {
		apphttp.ErrorResponse(w, "Sample data not available", http.StatusInternalServerError)
		return
	}
	if err := store.WriteFile(filepath.Join(cfg.UploadsDirectory, testdata.SampleFile), data, 0644); err != nil {
		apphttp.ErrorResponse(w, "Error saving sample data", http.StatusInternalServerError)
		return
	}
	log.Infof("Restored sample data: %s", testdata.SampleFile)
	renderFileList(w, http.StatusOK, changed())
}

// handleBackup streams every CSV as a zip of plain files, so a backup of an
// encrypted directory opens anywhere
func handleBackup(w http.ResponseWriter, r *http.Request) {
	files, err := store.Glob(filepath.Join(cfg.UploadsDirectory, "*.csv"))
	if err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range files {
		data, err := store.ReadFile(path)
		if err != nil {
			zw.Close()
			if errors.Is(err, storage.ErrLocked) {
				apphttp.ErrorResponse(w, "Data directory is locked", http.StatusLocked)
				return
			}
			apphttp.ErrorResponse(w, "Error reading "+filepath.Base(path), http.StatusInternalServerError)
			return
		}
		f, err := zw.Create(filepath.Base(path))
		if err == nil {
			_, err = f.Write(data)
		}
		if err != nil {
			zw.Close()
			apphttp.ErrorResponse(w, "Error creating backup", http.StatusInternalServerError)
			return
		}
	}
	if err := zw.Close(); err != nil {
		apphttp.ErrorResponse(w, "Error creating backup", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("coffeeslides_backup_%s.zip", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}

func handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRestoreSize); err != nil {
		apphttp.ErrorResponse(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.ErrorResponse(w, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, "Error reading file", http.StatusInternalServerError)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.ErrorResponse(w, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restored, locked := 0, false
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(zf.Name), ".csv") {
			continue
		}
		name := filepath.Base(zf.Name)
		if !validName(name) {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			log.Warnf("Error opening zip entry %s: %v", zf.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warnf("Error reading zip entry %s: %v", zf.Name, err)
			continue
		}

		if err := store.WriteFile(filepath.Join(cfg.UploadsDirectory, name), data, 0644); err != nil {
			if errors.Is(err, storage.ErrLocked) {
				locked = true
				break
			}
			log.Warnf("Error writing file %s: %v", name, err)
			continue
		}
		restored++
	}

	if locked {
		apphttp.ErrorResponse(w, "Data directory is locked", http.StatusLocked)
		return
	}
	if restored == 0 {
		apphttp.ErrorResponse(w, "No CSV files found in backup", http.StatusBadRequest)
		return
	}

	log.Infof("Restore complete: %d files restored", restored)
	renderFileList(w, http.StatusOK, changed())
}

func handleUnlock(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.Unlock(r.FormValue("passphrase")); err != nil {
		if errors.Is(err, storage.ErrIncorrectPassphrase) {
			apphttp.ErrorResponse(w, err.Error(), http.StatusForbidden)
			return
		}
		apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	renderFileList(w, http.StatusOK, changed())
}

// handleLock forgets the passphrase; files stay encrypted on disk and the
// slideshow keeps what it already loaded until the next unlock
func handleLock(w http.ResponseWriter, r *http.Request) {
	store.Lock()
	log.Info("Data directory locked")
	renderFileList(w, http.StatusOK, "")
}

func handleEnableEncryption(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.EnableEncryption(r.FormValue("passphrase")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, storage.ErrAlreadyEncrypted) {
			status = http.StatusConflict
		}
		apphttp.ErrorResponse(w, err.Error(), status)
		return
	}
	renderFileList(w, http.StatusOK, "")
}

func handleDisableEncryption(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apphttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.DisableEncryption(r.FormValue("passphrase")); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotEncrypted):
			apphttp.ErrorResponse(w, err.Error(), http.StatusConflict)
		case errors.Is(err, storage.ErrIncorrectPassphrase):
			apphttp.ErrorResponse(w, err.Error(), http.StatusForbidden)
		default:
			apphttp.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	renderFileList(w, http.StatusOK, "")
}
