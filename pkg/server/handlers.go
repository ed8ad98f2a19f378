package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

const maxRequestBody = 1 << 20 // 1 MiB

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func (s *Server) respond(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.logger.Error("encoding response", "error", err)
		}
	}
}

type registerPolicyRequest struct {
	Name       string `json:"name"`
	OwnerID    string `json:"owner_id"`
	Visibility string `json:"visibility,omitempty"`
	Document   string `json:"document"`
	Activate   bool   `json:"activate,omitempty"`
}

func (s *Server) handleRegisterPolicy(w http.ResponseWriter, r *http.Request) {
	var req registerPolicyRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	policy, err := s.engine.RegisterPolicy(r.Context(), engine.RegisterPolicyRequest{
		Name:       req.Name,
		OwnerID:    req.OwnerID,
		Visibility: governance.Visibility(req.Visibility),
		Document:   []byte(req.Document),
		Source:     "api",
		Activate:   req.Activate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, policy)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := s.engine.Policy(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, policy)
}

type executeRequest struct {
	PolicyID   string `json:"policy_id"`
	RuleID     string `json:"rule_id"`
	ForumID    string `json:"forum_id,omitempty"`
	ExecutedBy string `json:"executed_by"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	result, err := s.engine.Execute(r.Context(), engine.ExecutionRequest{
		PolicyID:   req.PolicyID,
		RuleID:     req.RuleID,
		ForumID:    req.ForumID,
		ExecutedBy: req.ExecutedBy,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleGetForum(w http.ResponseWriter, r *http.Request) {
	forum, err := s.engine.Forum(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, forum)
}

type submitRequest struct {
	SubmittedBy string `json:"submitted_by"`
	Text        string `json:"text"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	result, err := s.engine.Submit(r.Context(), engine.SubmitRequest{
		ForumID:     r.PathValue("id"),
		SubmittedBy: req.SubmittedBy,
		Text:        req.Text,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

type stakeholderRequest struct {
	Actor  string `json:"actor"`
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role"`
}

func (s *Server) handleAddStakeholder(w http.ResponseWriter, r *http.Request) {
	var req stakeholderRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	role := governance.Role(req.Role)
	if role == "" {
		role = governance.RoleMember
	}
	result, err := s.engine.AddStakeholder(r.Context(), r.PathValue("id"), req.Actor, req.UserID, role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req stakeholderRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	result, err := s.engine.SetStakeholderRole(r.Context(),
		r.PathValue("id"), req.Actor, r.PathValue("user"), governance.Role(req.Role))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleGetActivation(w http.ResponseWriter, r *http.Request) {
	activation, err := s.engine.Activation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, activation)
}

type activationRequest struct {
	Actor string `json:"actor"`
}

func (s *Server) handleActivationTransition(transition string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activationRequest
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, badRequest(err))
			return
		}

		id := r.PathValue("id")
		var (
			result *engine.ExecutionResult
			err    error
		)
		switch transition {
		case "start":
			result, err = s.engine.StartActivation(r.Context(), id, req.Actor)
		case "complete":
			result, err = s.engine.CompleteActivation(r.Context(), id, req.Actor)
		case "cancel":
			result, err = s.engine.CancelActivation(r.Context(), id, req.Actor)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, result)
	}
}

type eventsResponse struct {
	Events []*events.Event `json:"events"`
	Total  int64           `json:"total"`
}

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	q, err := eventQueryFromURL(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	matched, err := s.events.Query(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.events.Count(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, eventsResponse{Events: matched, Total: total})
}

// eventQueryFromURL translates query parameters into an audit query.
// Unknown event types and unparseable timestamps are rejected rather than
// silently matching nothing.
func eventQueryFromURL(r *http.Request) (*events.Query, error) {
	params := r.URL.Query()
	q := &events.Query{
		Actor:    params.Get("actor"),
		ForumID:  params.Get("forum_id"),
		PolicyID: params.Get("policy_id"),
	}

	if raw := params.Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			et := events.EventType(strings.TrimSpace(t))
			if !et.Valid() {
				return nil, fmt.Errorf("unknown event type %q", t)
			}
			q.Types = append(q.Types, et)
		}
	}

	for name, dst := range map[string]**time.Time{"start": &q.Start, "end": &q.End} {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		*dst = &ts
	}

	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q", name, raw)
		}
		*dst = n
	}

	return q, nil
}
