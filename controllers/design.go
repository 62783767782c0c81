package controllers

import (
	"context"
	"net/http"
	"strings"

	"go-tote-store/errs"
	"go-tote-store/metrics"
	"go-tote-store/models"
	"go-tote-store/utils"
)

// DesignController drives the session's design prompt and generation
type DesignController struct {
	Metrics *metrics.Metrics
}

func NewDesignController(m *metrics.Metrics) *DesignController {
	return &DesignController{Metrics: m}
}

type promptRequest struct {
	Prompt *string `json:"prompt"`
}

func (dc *DesignController) GetDesign(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	respond(w, r, http.StatusOK, s.Design.Snapshot())
}

func (dc *DesignController) SetPrompt(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in promptRequest
	if err := decode(r, &in); err != nil || in.Prompt == nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	s.Design.SetPrompt(*in.Prompt)
	s.Design.ResetError()
	respond(w, r, http.StatusOK, s.Design.Snapshot())
}

// Generate runs a design generation for the prompt in the body, or the
// stored prompt when the body has none. The generation keeps running if the
// client goes away.
func (dc *DesignController) Generate(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in promptRequest
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	prompt := s.Design.Snapshot().Prompt
	if in.Prompt != nil {
		prompt = *in.Prompt
	}

	_, err := s.Design.Generate(context.WithoutCancel(r.Context()), prompt)
	dc.count(err)
	if err != nil {
		if code := errs.CodeOf(err); code != errs.EmptyPrompt && code != errs.GenerationInProgress {
			s.Notify(models.NoticeError, errs.MessageOf(err))
		}
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Design.Snapshot())
}

func (dc *DesignController) count(err error) {
	if dc.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(errs.CodeOf(err).String())
	}
	dc.Metrics.Generations.WithLabelValues(outcome).Inc()
}
