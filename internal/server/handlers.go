package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/validate"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "root": s.st.Root()})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.st.GetStats()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// --- ingestion ---

type ingestRequest struct {
	Text string `json:"text"`
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	report, err := s.facade.Ingest(r.Context(), req.Text)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

type planRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

func (s *Server) planExtract(w http.ResponseWriter, r *http.Request) {
	if s.plan == nil {
		s.respondError(w, model.Unavailablef("no planner endpoint configured"))
		return
	}
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	ex, err := s.plan.Extract(r.Context(), req.Message, req.Context)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ex)
}

// --- search ---

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		s.badRequest(w, "missing query parameter q")
		return
	}
	opts := search.Options{}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			s.badRequest(w, "invalid limit")
			return
		}
		opts.Limit = n
	}

	var (
		env search.Envelope
		err error
	)
	if types := q.Get("types"); types != "" {
		env, err = s.engine.Find(r.Context(), query, types, opts)
	} else {
		switch mode := q.Get("mode"); mode {
		case "", "smart":
			env, err = s.engine.Smart(r.Context(), query, opts)
		case "fast":
			env, err = s.engine.Fast(r.Context(), query, opts)
		case "deep":
			env, err = s.engine.Deep(r.Context(), query, opts)
		default:
			s.badRequest(w, "invalid mode: "+mode)
			return
		}
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, env)
}

// --- tasks ---

type taskRequest struct {
	Action   string   `json:"action"`
	Time     string   `json:"time,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Project  string   `json:"project"`
	Status   string   `json:"status,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	task, err := validate.Task(tags.TaskDraft{
		Action:   req.Action,
		Time:     req.Time,
		Priority: req.Priority,
		Project:  req.Project,
		Status:   req.Status,
		Assignee: req.Assignee,
		Tags:     req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	task.Embedding = s.embedText(r.Context(), task.SearchText())
	if err := s.st.AddTask(task); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := model.TaskFilters{
		Project: q.Get("project"),
		Text:    q.Get("q"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			s.respondError(w, err)
			return
		}
		filters.Status = status
	}
	if raw := q.Get("priority"); raw != "" {
		priority, err := model.ParsePriority(raw)
		if err != nil {
			s.respondError(w, err)
			return
		}
		filters.Priority = priority
	}
	if raw := q.Get("assignee"); raw != "" {
		assignee, err := model.ParseAssignee(raw)
		if err != nil {
			s.respondError(w, err)
			return
		}
		filters.Assignee = assignee
	}
	tasks, err := s.st.ListTasks(filters)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.st.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch model.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	task, err := s.st.UpdateTask(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteTask(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.st.CompleteTask(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

type assignRequest struct {
	AgentID string `json:"agent_id"`
}

func (s *Server) assignTask(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	task, err := s.st.AssignTask(req.AgentID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

// --- memories ---

type memoryRequest struct {
	Type       string   `json:"type,omitempty"`
	Moment     string   `json:"moment"`
	Meaning    string   `json:"meaning,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Term       string   `json:"term,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (s *Server) createMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	m, err := validate.Memory(tags.MemoryDraft{
		Type:       req.Type,
		Moment:     req.Moment,
		Meaning:    req.Meaning,
		Reason:     req.Reason,
		Importance: req.Importance,
		Term:       req.Term,
		Tags:       req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	m.Embedding = s.embedText(r.Context(), m.SearchText())
	if err := s.st.SaveMemory(m); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, m)
}

func (s *Server) listMemories(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListMemories()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getMemory(w http.ResponseWriter, r *http.Request) {
	m, err := s.st.LoadMemory(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteMemory(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// --- ideas ---

type ideaRequest struct {
	Idea       string   `json:"idea"`
	Share      string   `json:"share,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Context    string   `json:"context,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (s *Server) createIdea(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	idea, err := validate.Idea(tags.IdeaDraft{
		Idea:       req.Idea,
		Share:      req.Share,
		Importance: req.Importance,
		Context:    req.Context,
		Tags:       req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	idea.Embedding = s.embedText(r.Context(), idea.SearchText())
	if err := s.st.SaveIdea(idea); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, idea)
}

func (s *Server) listIdeas(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListIdeas()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := s.st.LoadIdea(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, idea)
}

func (s *Server) deleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteIdea(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// --- feelings ---

type feelingRequest struct {
	Emotion     string   `json:"emotion"`
	Intensity   string   `json:"intensity,omitempty"`
	Description string   `json:"description"`
	Context     string   `json:"context,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *Server) createFeeling(w http.ResponseWriter, r *http.Request) {
	var req feelingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	f, err := validate.Feeling(tags.FeelDraft{
		Emotion:     req.Emotion,
		Intensity:   req.Intensity,
		Description: req.Description,
		Context:     req.Context,
		Tags:        req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.st.SaveFeeling(f); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, f)
}

func (s *Server) listFeelings(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListFeelings()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) deleteFeeling(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteFeeling(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// --- errors ---

type errorRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity,omitempty"`
	Category    string   `json:"category,omitempty"`
	Source      string   `json:"source,omitempty"`
	Context     string   `json:"context,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *Server) createError(w http.ResponseWriter, r *http.Request) {
	var req errorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	rec, err := validate.ErrorRecord(tags.ErrorDraft{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Category:    req.Category,
		Source:      req.Source,
		Context:     req.Context,
		Tags:        req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	rec.Embedding = s.embedText(r.Context(), rec.SearchText())
	if err := s.st.SaveErrorRecord(rec); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) listErrors(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListErrorRecords()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getError(w http.ResponseWriter, r *http.Request) {
	rec, err := s.st.LoadErrorRecord(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteError(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteErrorRecord(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) resolveError(w http.ResponseWriter, r *http.Request) {
	rec, err := s.st.ResolveErrorRecord(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// --- training ---

type trainingRequest struct {
	DataType     string   `json:"data_type"`
	Prompt       string   `json:"prompt"`
	Completion   string   `json:"completion"`
	Source       string   `json:"source,omitempty"`
	Context      string   `json:"context,omitempty"`
	QualityScore string   `json:"quality_score,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

func (s *Server) createTraining(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	sample, err := validate.Training(tags.TrainDraft{
		DataType:     req.DataType,
		Prompt:       req.Prompt,
		Completion:   req.Completion,
		Source:       req.Source,
		Context:      req.Context,
		QualityScore: req.QualityScore,
		Tags:         req.Tags,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	sample.Embedding = s.embedText(r.Context(), sample.SearchText())
	if err := s.st.SaveTrainingSample(sample); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, sample)
}

func (s *Server) listTraining(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListTrainingSamples()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getTraining(w http.ResponseWriter, r *http.Request) {
	sample, err := s.st.LoadTrainingSample(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sample)
}

func (s *Server) deleteTraining(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteTrainingSample(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// --- chunks ---

type chunkRequest struct {
	ID           string   `json:"id"`
	Level        string   `json:"level"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies,omitempty"`
	Code         string   `json:"code,omitempty"`
}

func (s *Server) createChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	chunk, err := validate.Chunk(tags.ChunkDraft{
		ID:           req.ID,
		Level:        req.Level,
		Description:  req.Description,
		Dependencies: req.Dependencies,
		Code:         req.Code,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.st.SaveChunk(chunk); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, chunk)
}

func (s *Server) listChunks(w http.ResponseWriter, r *http.Request) {
	items, err := s.st.ListChunks()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getChunk(w http.ResponseWriter, r *http.Request) {
	chunk, err := s.st.LoadChunk(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, chunk)
}

func (s *Server) deleteChunk(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteChunk(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

type chunkStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setChunkStatus(w http.ResponseWriter, r *http.Request) {
	var req chunkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	status, err := model.ParseChunkStatus(req.Status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.st.SetChunkStatus(chi.URLParam(r, "id"), status); err != nil {
		s.respondError(w, err)
		return
	}
	chunk, err := s.st.LoadChunk(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, chunk)
}

// --- queue ---

type queueRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Project     string `json:"project,omitempty"`
}

func (s *Server) createQueueItem(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		s.badRequest(w, "queue item name is required")
		return
	}
	priority := model.PriorityMedium
	if req.Priority != "" {
		p, err := model.ParsePriority(req.Priority)
		if err != nil {
			s.respondError(w, err)
			return
		}
		priority = p
	}
	item := model.NewQueueItem(req.Name, req.Description, priority, req.Project)
	if err := s.st.AddQueueItem(item); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) listQueue(w http.ResponseWriter, r *http.Request) {
	var status model.QueueStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := model.ParseQueueStatus(raw)
		if err != nil {
			s.respondError(w, err)
			return
		}
		status = parsed
	}
	items, err := s.st.ListQueue(status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) getQueueItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.st.GetQueueItem(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) deleteQueueItem(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteQueueItem(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.st.StartSession(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, session)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.st.EndSession(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, session)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.st.ListSessions(r.URL.Query().Get("item"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sessions)
}

// --- projects ---

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		s.badRequest(w, "project name is required")
		return
	}
	project := model.NewProject(req.Name, req.Description)
	if err := s.st.CreateProject(project); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, project)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.st.ListProjects()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.st.GetProject(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteProject(chi.URLParam(r, "name")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) archiveProject(w http.ResponseWriter, r *http.Request) {
	moved, err := s.st.ArchiveProject(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"archived_tasks": moved})
}

type projectStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setProjectStatus(w http.ResponseWriter, r *http.Request) {
	var req projectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	status, err := model.ParseProjectStatus(req.Status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	project, err := s.st.SetProjectStatus(chi.URLParam(r, "name"), status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// --- agents ---

type agentRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ID == "" || req.Name == "" {
		s.badRequest(w, "agent id and name are required")
		return
	}
	agent := model.NewAgent(req.ID, req.Name, req.Description)
	agent.Capabilities = req.Capabilities
	if err := s.st.SaveAgent(agent); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, agent)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.st.ListAgents()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, agents)
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.st.GetAgent(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, agent)
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteAgent(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// --- backups ---

type backupRequest struct {
	Name string `json:"name,omitempty"`
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.badRequest(w, "invalid request body: "+err.Error())
			return
		}
	}
	name, err := s.st.CreateBackup(req.Name)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) listBackups(w http.ResponseWriter, r *http.Request) {
	names, err := s.st.ListBackups()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, names)
}

// embedText returns a vector for text, or nil when embedding is off or
// fails. Writes never block on the embedding backend.
func (s *Server) embedText(ctx context.Context, text string) []float32 {
	if s.embedder == nil || text == "" {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vec
}
