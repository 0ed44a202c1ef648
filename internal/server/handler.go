package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/keycalc"
	"github.com/zephyrtronium/keycalc/internal/session"
)

// State is the view of a session returned by every endpoint.
type State struct {
	ID         string `json:"id"`
	Buffer     string `json:"buffer"`
	Preview    string `json:"preview"`
	History    string `json:"history"`
	LastResult string `json:"last_result"`
	// Committed is set by requests which commit.
	Committed *bool `json:"committed,omitempty"`
	// Error is the reason a commit was rejected.
	Error string `json:"error,omitempty"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// AppendRequest types one token.
type AppendRequest struct {
	Token string `json:"token" binding:"required"`
}

// ClearRequest clears the buffer entirely or removes its last character.
type ClearRequest struct {
	Kind string `json:"kind" binding:"required,oneof=full backspace"`
}

// KeysRequest presses keyboard keys in order.
type KeysRequest struct {
	Keys []string `json:"keys" binding:"required,min=1,dive,required"`
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Status: status, Message: msg})
}

func (st *State) fill(id string, e *keycalc.Engine) {
	st.ID = id
	st.Buffer, st.Preview = e.Peek()
	st.History = e.History()
	st.LastResult = e.LastResult()
}

// do runs f on the engine of the session named in the path and responds with
// the resulting state.
func (s *Server) do(c *gin.Context, f func(e *keycalc.Engine, st *State)) {
	id := c.Param("id")
	var st State
	err := s.store.Do(id, func(e *keycalc.Engine) error {
		if f != nil {
			f(e, &st)
		}
		st.fill(id, e)
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			fail(c, http.StatusNotFound, "session not found")
			return
		}
		s.log.WithError(err).WithField("session", id).Error("session failed")
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, &st)
}

// commitEngine commits e and records the outcome in st.
func (s *Server) commitEngine(id string, e *keycalc.Engine, st *State) {
	expr := e.Buffer()
	ok := e.Commit()
	st.Committed = &ok
	st.Error = ""
	fields := logrus.Fields{"session": id, "expression": expr}
	if !ok {
		if err := e.Err(); err != nil {
			st.Error = err.Error()
			s.log.WithFields(fields).WithError(err).Warn("commit rejected")
		}
		return
	}
	fields["result"] = e.LastResult()
	s.log.WithFields(fields).Info("commit")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "sessions": s.store.Len()})
}

func (s *Server) create(c *gin.Context) {
	id := s.store.Create()
	var st State
	err := s.store.Do(id, func(e *keycalc.Engine) error {
		st.fill(id, e)
		return nil
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, &st)
}

func (s *Server) get(c *gin.Context) {
	s.do(c, nil)
}

func (s *Server) delete(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		fail(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) append(c *gin.Context) {
	var req AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.do(c, func(e *keycalc.Engine, _ *State) {
		e.Append(req.Token)
	})
}

func (s *Server) clear(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	kind := keycalc.ClearAll
	if req.Kind == "backspace" {
		kind = keycalc.ClearBackspace
	}
	s.do(c, func(e *keycalc.Engine, _ *State) {
		e.Clear(kind)
	})
}

func (s *Server) commit(c *gin.Context) {
	id := c.Param("id")
	s.do(c, func(e *keycalc.Engine, st *State) {
		s.commitEngine(id, e, st)
	})
}

func (s *Server) keys(c *gin.Context) {
	var req KeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	id := c.Param("id")
	s.do(c, func(e *keycalc.Engine, st *State) {
		for _, k := range req.Keys {
			if keycalc.CommitKey(k) {
				s.commitEngine(id, e, st)
				continue
			}
			if handled, _ := e.Press(k); !handled {
				s.log.WithFields(logrus.Fields{"session": id, "key": k}).Debug("ignored key")
			}
		}
	})
}
