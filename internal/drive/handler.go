package drive

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes a small admin surface for inspecting the Drive folder
// holding raw extracts and pulling them down on demand. It runs on its own
// mux router, separate from the public report API.
type Handler struct {
	service    *Service
	downloader *Downloader
	folderID   string
	downloads  string
}

func NewHandler(service *Service, folderID, downloadDir string) *Handler {
	return &Handler{
		service:    service,
		downloader: NewDownloader(service),
		folderID:   folderID,
		downloads:  downloadDir,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/admin/drive/files/download", h.DownloadFile).Methods("GET")
	router.HandleFunc("/admin/drive/fetch", h.FetchExtracts).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")

	if folderID == "" {
		folderID = h.folderID
	}

	var err error
	if folderPath != "" {
		folderID, err = h.service.FindFolderByPath(folderPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	files, err := h.service.ListFiles(folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=extract.csv")

	if err := h.service.DownloadFile(fileID, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// FetchExtracts pulls every extract in the configured folder into the local
// download directory, converting XLSX to CSV along the way.
func (h *Handler) FetchExtracts(w http.ResponseWriter, r *http.Request) {
	paths, err := h.downloader.DownloadFolderCSV(r.Context(), DownloadOptions{
		FolderID:    h.folderID,
		DownloadDir: h.downloads,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("fetch failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"files":  paths,
	})
}
