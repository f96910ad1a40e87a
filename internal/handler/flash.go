package handler

import (
	"net/http"

	"reviewdesk/internal/logger"
	"reviewdesk/internal/models"
)

const flashSession = "flash"

// flash queues a one-time message for the next rendered page. It must run
// before anything is written to w.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	sess, err := h.flashes.Get(r, flashSession)
	if err != nil {
		logger.Debugf("flash: discarding unreadable session: %v", err)
	}
	sess.AddFlash(message, category)
	if err := sess.Save(r, w); err != nil {
		logger.Errorf("flash: save session: %v", err)
	}
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []models.Flash {
	sess, err := h.flashes.Get(r, flashSession)
	if err != nil {
		return nil
	}

	var out []models.Flash
	for _, category := range models.FlashCategories {
		for _, v := range sess.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, models.Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			logger.Errorf("flash: save session: %v", err)
		}
	}
	return out
}
