package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gamedocs.dev/interview-wizard/internal/config"
	"gamedocs.dev/interview-wizard/internal/core"
	"gamedocs.dev/interview-wizard/internal/export"
	"gamedocs.dev/interview-wizard/internal/store"
	"gamedocs.dev/interview-wizard/internal/wizard"
)

type APIHandler struct {
	sessions   *core.SessionService
	interview  *core.InterviewService
	dbStore    *store.SQLiteStore
	uploader   *export.Uploader // nil when remote mirroring is unavailable
	vocabulary []string
	exportDir  string
}

func NewAPIHandler(sessions *core.SessionService, interview *core.InterviewService, db *store.SQLiteStore, uploader *export.Uploader, vocabulary []string, exportDir string) *APIHandler {
	return &APIHandler{
		sessions:   sessions,
		interview:  interview,
		dbStore:    db,
		uploader:   uploader,
		vocabulary: vocabulary,
		exportDir:  exportDir,
	}
}

// TurnResponse is the JSON shape of one turn.
type TurnResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
	Liked    bool     `json:"liked"`
	Open     bool     `json:"open"`
}

func toTurnResponses(turns []wizard.Turn) []TurnResponse {
	out := make([]TurnResponse, 0, len(turns))
	for _, t := range turns {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, TurnResponse{
			Question: t.Question,
			Answer:   t.Answer,
			Tags:     tags,
			Liked:    t.Liked,
			Open:     t.Open(),
		})
	}
	return out
}

// loadSettings returns the stored generation settings, seeding the store
// with the configured defaults on first use.
func (h *APIHandler) loadSettings() (wizard.Settings, error) {
	settings, err := h.dbStore.GetSettings()
	if err != nil {
		return wizard.Settings{}, err
	}
	if settings == nil {
		defaults := config.DefaultSettings()
		if err := h.dbStore.PutSettings(defaults); err != nil {
			return wizard.Settings{}, err
		}
		return defaults, nil
	}
	return *settings, nil
}

func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.loadSettings()
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(settings)
}

func (h *APIHandler) PutSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings wizard.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := settings.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.dbStore.PutSettings(settings); err != nil {
		log.Printf("Error saving settings: %v", err)
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(settings)
}

type SessionResponse struct {
	*store.Session
	Turns []TurnResponse `json:"turns"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, turns, err := h.sessions.CreateSession()
	if err != nil {
		log.Printf("Error creating session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SessionResponse{Session: session, Turns: toTurnResponses(turns)})
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions()
	if err != nil {
		log.Printf("Error listing sessions: %v", err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	json.NewEncoder(w).Encode(sessions)
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, turns, err := h.sessions.GetSession(sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	json.NewEncoder(w).Encode(SessionResponse{Session: session, Turns: toTurnResponses(turns)})
}

type AnswerRequest struct {
	Answer    string   `json:"answer"`
	Blacklist []string `json:"blacklist,omitempty"`
}

type AnswerResponse struct {
	Question string `json:"question"`
}

func (h *APIHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Answer == "" {
		http.Error(w, "Answer cannot be empty", http.StatusBadRequest)
		return
	}

	settings, err := h.loadSettings()
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	next, err := h.sessions.Answer(r.Context(), sessionID, req.Answer, req.Blacklist, settings)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	json.NewEncoder(w).Encode(AnswerResponse{Question: next})
}

type TagsRequest struct {
	Tags []string `json:"tags"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

func (h *APIHandler) TagsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req TagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	applied, err := h.sessions.Tags(sessionID, req.Tags)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	if applied == nil {
		applied = []string{}
	}
	json.NewEncoder(w).Encode(TagsResponse{Tags: applied})
}

func (h *APIHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Like(sessionID); err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DocumentResponse struct {
	Document  string            `json:"document"`
	Artifacts *export.Artifacts `json:"artifacts,omitempty"`
}

func (h *APIHandler) DocumentHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	settings, err := h.loadSettings()
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	doc, records, err := h.sessions.Document(r.Context(), sessionID, settings)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientData) {
			http.Error(w, "Not enough answered questions to build a document yet", http.StatusUnprocessableEntity)
			return
		}
		h.writeSessionError(w, sessionID, err)
		return
	}

	artifacts := h.writeArtifacts(r.Context(), sessionID, doc, records, settings.StorageBucket)
	json.NewEncoder(w).Encode(DocumentResponse{Document: doc, Artifacts: artifacts})
}

// writeArtifacts persists the document and ledger files and mirrors them
// to the configured bucket. Artifact failures are logged, not surfaced:
// the generated document is already in hand.
func (h *APIHandler) writeArtifacts(ctx context.Context, sessionID, doc string, records []wizard.TurnRecord, bucket string) *export.Artifacts {
	baseName := "gdd-" + sessionID
	artifacts, err := export.WriteArtifacts(h.exportDir, baseName, doc, records)
	if err != nil {
		log.Printf("Failed to write artifacts for session %s: %v", sessionID, err)
		return nil
	}

	if bucket != "" {
		if h.uploader == nil {
			log.Printf("Storage bucket %s configured but uploader unavailable, skipping mirror", bucket)
			return artifacts
		}
		ledgerJSON, err := json.Marshal(records)
		if err != nil {
			log.Printf("Failed to marshal ledger for mirroring: %v", err)
			return artifacts
		}
		if err := h.uploader.Mirror(ctx, bucket, baseName, doc, ledgerJSON); err != nil {
			log.Printf("Failed to mirror artifacts for session %s: %v", sessionID, err)
		}
	}
	return artifacts
}

func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	records, err := h.sessions.Export(sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	json.NewEncoder(w).Encode(records)
}

func (h *APIHandler) TrainingHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	examples, err := h.sessions.TrainingData(sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	json.NewEncoder(w).Encode(examples)
}

type SuggestTagsRequest struct {
	Question   string   `json:"question"`
	Vocabulary []string `json:"vocabulary,omitempty"`
}

func (h *APIHandler) SuggestTagsHandler(w http.ResponseWriter, r *http.Request) {
	var req SuggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "Question cannot be empty", http.StatusBadRequest)
		return
	}

	settings, err := h.loadSettings()
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	vocabulary := req.Vocabulary
	if len(vocabulary) == 0 {
		vocabulary = h.vocabulary
	}

	tags := h.interview.SuggestTags(r.Context(), req.Question, vocabulary, settings)
	json.NewEncoder(w).Encode(TagsResponse{Tags: tags})
}

func (h *APIHandler) writeSessionError(w http.ResponseWriter, sessionID string, err error) {
	var confErr *wizard.ConfigurationError
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, wizard.ErrNoOpenTurn), errors.Is(err, wizard.ErrOpenTurn), errors.Is(err, wizard.ErrAlreadyAnswered):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &confErr):
		http.Error(w, confErr.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error handling session %s: %v", sessionID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
