package kit

import (
	"net/http"

	"go.uber.org/zap"
)

type Result struct {
	Status int
	Data   any
}

func OK(v any) Result      { return Result{Status: http.StatusOK, Data: v} }
func Created(v any) Result { return Result{Status: http.StatusCreated, Data: v} }
func NoContent() Result    { return Result{Status: http.StatusNoContent} }

type HandlerFunc func(r *http.Request) (Result, error)

// Handle is the single place where handler outcomes become responses.
// Domain errors were already logged where they were detected, so only
// unexpected failures are logged here.
func Handle(log *zap.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r)
		if err != nil {
			if status, _ := StatusOf(err); status >= http.StatusInternalServerError && log != nil {
				log.Error("request failed",
					zap.String("request_id", RequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
			WriteError(w, r, err)
			return
		}

		switch res.Status {
		case http.StatusNoContent:
			w.WriteHeader(http.StatusNoContent)
		case 0:
			WriteData(w, r, http.StatusOK, res.Data)
		default:
			WriteData(w, r, res.Status, res.Data)
		}
	}
}
