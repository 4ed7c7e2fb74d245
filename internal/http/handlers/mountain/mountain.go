// Package mountain contains the HTTP handlers for the Mountain resource.
//
// HANDLER PATTERN: each exported function is a factory. It receives its
// dependencies (storage) once at route registration and returns the
// http.HandlerFunc the router calls on every request:
//
//	router.HandleFunc("POST /api/mountains", mountain.New(storage))
//
// Authentication is not handled here; the Basic-Auth guard wraps the whole
// router before any of these handlers run.
package mountain

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/mountains-api/internal/storage"
	"github.com/aanand-mishra/mountains-api/internal/types"
	"github.com/aanand-mishra/mountains-api/internal/utils/response"
)

// validate is shared by all handlers; validator caches struct metadata,
// so one instance per process is enough.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names ("height") instead of Go field names ("Height").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// RegisterRoutes mounts every mountain endpoint on router.
//
// Route table:
//
//	GET    /api/mountains        → list all mountains
//	POST   /api/mountains        → create a mountain
//	GET    /api/mountains/{id}   → rows matching id, as an array
//	POST   /api/mountains/{id}   → create a mountain (path id ignored)
//	PUT    /api/mountains/{id}   → replace a mountain
//	DELETE /api/mountains/{id}   → delete a mountain
func RegisterRoutes(router *http.ServeMux, storage storage.Storage) {
	router.HandleFunc("GET /api/mountains", GetList(storage))
	router.HandleFunc("POST /api/mountains", New(storage))
	router.HandleFunc("GET /api/mountains/{id}", GetByID(storage))
	router.HandleFunc("POST /api/mountains/{id}", New(storage))
	router.HandleFunc("PUT /api/mountains/{id}", Update(storage))
	router.HandleFunc("DELETE /api/mountains/{id}", Delete(storage))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/mountains and POST /api/mountains/{id}.
//
// Request body (JSON):
//
//	{ "name": "Everest", "height": 8849, "location": "Nepal" }
//
// Success response (201 Created), the stored mountain:
//
//	{ "id": 1, "name": "Everest", "height": 8849, "location": "Nepal" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or missing fields
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a mountain")

		mountain, ok := decodeMountain(w, r)
		if !ok {
			return
		}

		lastID, err := storage.CreateMountain(r.Context(), mountain.Name, mountain.Height, mountain.Location)
		if err != nil {
			slog.Error("error creating mountain", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		mountain.ID = lastID
		slog.Info("mountain created", slog.Int64("id", lastID))

		response.WriteJSON(w, http.StatusCreated, mountain)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/mountains.
// Returns a JSON array of all mountains; [] (not null) when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all mountains")

		mountains, err := storage.GetMountains(r.Context())
		if err != nil {
			slog.Error("error getting mountains", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, mountains)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/mountains/{id}.
//
// The result is always an array: one element when the id exists, [] when
// it does not. Both are 200 OK.
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a mountain", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		mountains, err := storage.GetMountainsByID(r.Context(), intID)
		if err != nil {
			slog.Error("error getting mountain",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, mountains)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/mountains/{id}.
// Replaces ALL fields of an existing mountain; the id never changes.
//
// Success response (200 OK), the updated mountain.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, or missing fields
//	404 Not Found    — no mountain has this id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a mountain", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		mountain, ok := decodeMountain(w, r)
		if !ok {
			return
		}

		updated, err := storage.UpdateMountainByID(r.Context(), intID, mountain)
		if err != nil {
			writeStorageError(w, "error updating mountain", id, err)
			return
		}

		slog.Info("mountain updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/mountains/{id}.
//
// Success response: 204 No Content, empty body.
//
// Error responses:
//
//	400 Bad Request  — invalid id
//	404 Not Found    — no mountain has this id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a mountain", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		if err := storage.DeleteMountainByID(r.Context(), intID); err != nil {
			writeStorageError(w, "error deleting mountain", id, err)
			return
		}

		slog.Info("mountain deleted", slog.String("id", id))
		response.WriteNoContent(w)
	}
}

// decodeMountain reads and validates the request body shared by create and
// replace. On failure it has already written the 400 response.
func decodeMountain(w http.ResponseWriter, r *http.Request) (types.Mountain, bool) {
	var mountain types.Mountain

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&mountain)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Mountain{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Mountain{}, false
	}

	// Anything but whitespace after the object is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body must contain a single JSON object")))
		return types.Mountain{}, false
	}

	if err := validate.Struct(mountain); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return types.Mountain{}, false
		}

		resp := response.ValidationError(validateErrs)
		slog.Info("rejected mountain", slog.Any("fields", resp.Fields))
		response.WriteJSON(w, http.StatusBadRequest, resp)
		return types.Mountain{}, false
	}

	// The id is assigned by storage or taken from the path, never the body.
	mountain.ID = 0
	return mountain, true
}

// parseID converts the {id} path segment; on failure it writes 400.
func parseID(w http.ResponseWriter, id string) (int64, bool) {
	intID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}

	return intID, true
}

func writeStorageError(w http.ResponseWriter, msg, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.Message(response.MsgNotFound))
		return
	}

	slog.Error(msg, slog.String("id", id), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
