package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

/*** DTOs shared across handlers ***/

type PostQuestionReq struct {
	Question string `json:"question"`
}

type AdminQuestionDTO struct {
	Question
	Answered *int `json:"answered,omitempty"` // asker's current tally, when they have one
}

/*** Participant views ***/

func ListQuestions(view *View) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, view.Questions())
	}
}

func ListStudents(view *View) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, view.Students())
	}
}

func PostQuestion(forum *Forum) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostQuestionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		q, err := forum.Post(c.Request.Context(), currentParticipant(c), req.Question)
		if errors.Is(err, ErrNotSignedIn) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

func WithdrawQuestion(forum *Forum) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := forum.Withdraw(c.Request.Context(), currentParticipant(c), c.Param("id"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"withdrawn": true})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		case errors.Is(err, ErrNotAsker):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		}
	}
}

/*** Moderation ***/

func AdminListQuestions(view *View) gin.HandlerFunc {
	return func(c *gin.Context) {
		scores := view.Students()
		qs := view.Questions()
		out := make([]AdminQuestionDTO, 0, len(qs))
		for _, q := range qs {
			dto := AdminQuestionDTO{Question: q}
			if n, ok := scoreFor(q.Name, scores); ok {
				dto.Answered = &n
			}
			out = append(out, dto)
		}
		c.JSON(http.StatusOK, out)
	}
}

func DismissQuestion(mod *Moderator) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := mod.Dismiss(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dismissed": n > 0})
	}
}

func CreditQuestion(store *Store, view *View, mod *Moderator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		q, err := store.GetQuestion(ctx, c.Param("id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		if err := mod.CreditAndDismiss(ctx, *q, view.Students()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"credited": q.Name})
	}
}

func CreditAll(view *View, mod *Moderator) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mod.CreditAll(c.Request.Context(), view.Questions(), view.Students())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ResetSession clears open questions; ?students=true (or the configured
// default) also clears every score row.
func ResetSession(mod *Moderator, resetStudents bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		withStudents := resetStudents
		if v := c.Query("students"); v != "" {
			withStudents = v == "true" || v == "1"
		}
		res, err := mod.ResetSession(c.Request.Context(), withStudents)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

/*** Live updates ***/

// Events streams a "change" event naming the table every time a watched
// table changes. ?table= may repeat; default is questions and students.
// The stream ends when the client goes away or stop is closed.
func Events(feed *Feed, stop <-chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables := c.QueryArray("table")
		if len(tables) == 0 {
			tables = []string{tableQuestions, tableStudents}
		}

		changes := make(chan string, len(tables))
		done := make(chan struct{})
		defer close(done)
		for _, t := range tables {
			t = strings.TrimSpace(t)
			sub := feed.Subscribe(t)
			defer sub.Unsubscribe()
			go func() {
				for {
					select {
					case <-done:
						return
					case <-sub.C:
						select {
						case changes <- sub.Table:
						case <-done:
							return
						}
					}
				}
			}()
		}

		sseClients.Inc()
		defer sseClients.Dec()

		c.Header("Cache-Control", "no-cache")
		c.SSEvent("ready", strings.Join(tables, ","))
		c.Writer.Flush()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case <-stop:
				return false
			case t := <-changes:
				c.SSEvent("change", t)
				return true
			}
		})
	}
}
