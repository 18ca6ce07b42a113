package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
)

func (s *Server) listTopics(c *gin.Context) {
	topics := s.graph.TopologicalOrder()
	out := make([]topicView, len(topics))
	for i, t := range topics {
		out[i] = newTopicView(t)
	}
	success(c, out)
}

func (s *Server) getTopic(c *gin.Context) {
	t, ok := s.graph.Topic(c.Param("topicID"))
	if !ok {
		fail(c, http.StatusNotFound, "topic not found")
		return
	}
	v := newTopicView(t)
	for _, d := range s.graph.Dependents(t.ID) {
		v.Dependents = append(v.Dependents, d.ID)
	}
	success(c, v)
}

func (s *Server) getDaily(c *gin.Context) {
	userID := c.Param("userID")
	set, err := s.sets.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	s.writeSet(c, userID, set)
}

func (s *Server) getSet(c *gin.Context) {
	userID := c.Param("userID")
	set, err := s.sets.Set(c.Request.Context(), userID, c.Param("setID"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	s.writeSet(c, userID, set)
}

func (s *Server) writeSet(c *gin.Context, userID string, set *dailyset.Set) {
	attempts, err := s.sets.Attempts(c.Request.Context(), userID, set.ID)
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, newSetView(set, attempts))
}

func (s *Server) listSets(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			fail(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	sets, err := s.sets.History(c.Request.Context(), c.Param("userID"), limit)
	if err != nil {
		s.failErr(c, err)
		return
	}
	out := make([]setSummary, len(sets))
	for i, set := range sets {
		out[i] = newSetSummary(set)
	}
	success(c, out)
}

type answerRequest struct {
	Answer   string `json:"answer"`
	ImageRef string `json:"imageRef"`
	Skipped  bool   `json:"skipped"`
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.sets.SubmitAnswer(c.Request.Context(), dailyset.Submission{
		UserID:    c.Param("userID"),
		SetID:     c.Param("setID"),
		ProblemID: c.Param("problemID"),
		Answer:    req.Answer,
		ImageRef:  req.ImageRef,
		Skipped:   req.Skipped,
	})
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, res)
}

type practiceRequest struct {
	TopicID string `json:"topicId" binding:"required"`
	Count   int    `json:"count"`
}

func (s *Server) startPractice(c *gin.Context) {
	var req practiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	userID := c.Param("userID")
	set, err := s.sets.StartPractice(c.Request.Context(), userID, req.TopicID, req.Count)
	if err != nil {
		s.failErr(c, err)
		return
	}
	created(c, newSetView(set, nil))
}

func (s *Server) getProgress(c *gin.Context) {
	ctx := c.Request.Context()
	snap := s.tracker.Snapshot(ctx, c.Param("userID"))
	v := newProgressView(progress.BuildView(s.graph, snap))
	for _, t := range progress.Recommendations(s.graph, snap) {
		v.Recommendations = append(v.Recommendations, newTopicView(t))
	}
	success(c, v)
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.ledger.Profile(c.Request.Context(), c.Param("userID"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, s.profileView(p))
}

func (s *Server) updateProfile(c *gin.Context) {
	var prefs rewards.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.ledger.UpdatePreferences(c.Request.Context(), c.Param("userID"), prefs)
	if err != nil {
		s.failErr(c, err)
		return
	}
	success(c, s.profileView(p))
}

func (s *Server) profileView(p rewards.Profile) profileView {
	lp := s.ledger.Config().LevelProgress(p.TotalXP)
	return profileView{Profile: p, LevelProgress: levelView{LevelProgress: lp, Percent: lp.Percent()}}
}
