package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/career-admin/internal/db"
)

// maxListLimit caps the limit query parameter
const maxListLimit = 500

// recordOps binds one collection's store methods for the generic handlers
type recordOps[T any] struct {
	get    func(ctx context.Context, id uuid.UUID) (*T, error)
	list   func(ctx context.Context, f db.ListFilter) ([]T, error)
	create func(ctx context.Context, rec *T) error
	update func(ctx context.Context, rec *T) error
	delete func(ctx context.Context, id uuid.UUID) error
	setID  func(rec *T, id uuid.UUID)
}

// registerRecords adds list/create/get/update/delete routes for every list collection
func (s *Server) registerRecords(mux *http.ServeMux) {
	st := s.store

	registerCollection(s, mux, db.CollectionExperiences, recordOps[db.Experience]{
		get: st.GetExperience, list: st.ListExperiences,
		create: st.CreateExperience, update: st.UpdateExperience, delete: st.DeleteExperience,
		setID: func(rec *db.Experience, id uuid.UUID) { rec.ID = id },
	})
	registerCollection(s, mux, db.CollectionSkills, recordOps[db.Skill]{
		get: st.GetSkill, list: st.ListSkills,
		create: st.CreateSkill, update: st.UpdateSkill, delete: st.DeleteSkill,
		setID: func(rec *db.Skill, id uuid.UUID) { rec.ID = id },
	})
	registerCollection(s, mux, db.CollectionProjects, recordOps[db.Project]{
		get: st.GetProject, list: st.ListProjects,
		create: st.CreateProject, update: st.UpdateProject, delete: st.DeleteProject,
		setID: func(rec *db.Project, id uuid.UUID) { rec.ID = id },
	})
	registerCollection(s, mux, db.CollectionEducation, recordOps[db.Education]{
		get: st.GetEducation, list: st.ListEducation,
		create: st.CreateEducation, update: st.UpdateEducation, delete: st.DeleteEducation,
		setID: func(rec *db.Education, id uuid.UUID) { rec.ID = id },
	})
	registerCollection(s, mux, db.CollectionKeywords, recordOps[db.Keyword]{
		get: st.GetKeyword, list: st.ListKeywords,
		create: st.CreateKeyword, update: st.UpdateKeyword, delete: st.DeleteKeyword,
		setID: func(rec *db.Keyword, id uuid.UUID) { rec.ID = id },
	})
}

func registerCollection[T any](s *Server, mux *http.ServeMux, name string, ops recordOps[T]) {
	base := "/" + name
	mux.HandleFunc("GET "+base, handleList(s, ops))
	mux.HandleFunc("POST "+base, handleCreate(s, ops))
	mux.HandleFunc("GET "+base+"/{id}", handleGet(s, ops))
	mux.HandleFunc("PUT "+base+"/{id}", handleUpdate(s, ops))
	mux.HandleFunc("DELETE "+base+"/{id}", handleDelete(s, ops))
}

func handleList[T any](s *Server, ops recordOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		records, err := ops.list(r.Context(), filter)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if records == nil {
			records = []T{}
		}
		s.jsonResponse(w, http.StatusOK, records)
	}
}

func handleGet[T any](s *Server, ops recordOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		rec, err := ops.get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if rec == nil {
			s.writeError(w, r, db.ErrNotFound)
			return
		}
		s.jsonResponse(w, http.StatusOK, rec)
	}
}

func handleCreate[T any](s *Server, ops recordOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := s.decodeJSON(w, r, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		// IDs are assigned by the store
		ops.setID(&rec, uuid.Nil)

		if err := ops.create(r.Context(), &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusCreated, &rec)
	}
}

func handleUpdate[T any](s *Server, ops recordOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var rec T
		if err := s.decodeJSON(w, r, &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		ops.setID(&rec, id)

		if err := ops.update(r.Context(), &rec); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, &rec)
	}
}

func handleDelete[T any](s *Server, ops recordOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := ops.delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleGetProfile returns the singleton profile, 404 when none has been saved
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profile == nil {
		s.writeError(w, r, db.ErrNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile creates or replaces the profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile db.Profile
	if err := s.decodeJSON(w, r, &profile); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.UpsertProfile(r.Context(), &profile); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &profile)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// parseListFilter reads role_type, featured and limit from the query string
func parseListFilter(r *http.Request) (db.ListFilter, error) {
	q := r.URL.Query()
	filter := db.ListFilter{RoleType: q.Get("role_type")}

	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &ErrValidation{Field: "featured", Message: "must be true or false"}
		}
		filter.Featured = db.Bool(featured)
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 || limit > maxListLimit {
			return filter, &ErrValidation{Field: "limit", Message: "must be between 0 and " + strconv.Itoa(maxListLimit)}
		}
		filter.Limit = limit
	}

	return filter, nil
}
