package api

import (
	"html/template"
	"net/http"
	"regexp"

	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

var formPage = template.Must(template.New("form").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>TOPSIS Web Service</title></head>
<body>
<h2>TOPSIS Web Service</h2>
<form method="post" enctype="multipart/form-data">
  <label>CSV File: <input type="file" name="input_file" accept=".csv" required></label><br><br>
  <label>Weights: <input type="text" name="weights" value="{{.Weights}}" required placeholder="1,1,1,1"></label><br><br>
  <label>Impacts: <input type="text" name="impacts" value="{{.Impacts}}" required placeholder="+,+,-,+"></label><br><br>
  <label>Email: <input type="email" name="email" value="{{.Email}}" required></label><br><br>
  <input type="submit" value="Submit">
</form>
{{with .Message}}<p class="{{$.Class}}">{{.}}</p>{{end}}
</body>
</html>
`))

type formView struct {
	Weights string
	Impacts string
	Email   string
	Message string
	Class   string
}

// FormHandler serves the browser upload form. Accepted submissions are
// ranked immediately and queued for e-mail delivery.
type FormHandler struct {
	ranker          *Ranker
	deliveryEnabled bool
}

func NewFormHandler(rk *Ranker, deliveryEnabled bool) *FormHandler {
	return &FormHandler{ranker: rk, deliveryEnabled: deliveryEnabled}
}

func (h *FormHandler) Show(w http.ResponseWriter, r *http.Request) {
	renderForm(w, http.StatusOK, formView{})
}

func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.deliveryEnabled {
		renderForm(w, http.StatusServiceUnavailable, formView{
			Message: "Error: email delivery is not configured",
			Class:   "error",
		})
		return
	}

	sub, err := h.ranker.readSubmission(w, r)
	if err != nil {
		renderForm(w, statusFor(err), formView{
			Weights: r.FormValue("weights"),
			Impacts: r.FormValue("impacts"),
			Email:   r.FormValue("email"),
			Message: "Error: " + err.Error(),
			Class:   "error",
		})
		return
	}
	view := formView{Weights: sub.Weights, Impacts: sub.Impacts, Email: sub.Email}

	if !emailPattern.MatchString(sub.Email) {
		view.Message, view.Class = "Error: Invalid email format", "error"
		renderForm(w, http.StatusBadRequest, view)
		return
	}

	run, _, err := h.ranker.rank(r.Context(), store.SourceForm, sub)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.ranker.logger.Error("form submission failed", "error", err)
		}
		view.Message, view.Class = "Error: "+err.Error(), "error"
		renderForm(w, status, view)
		return
	}

	renderForm(w, http.StatusOK, formView{
		Message: "Result queued for delivery to " + run.Email + ".",
		Class:   "ok",
	})
}

func renderForm(w http.ResponseWriter, status int, v formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	formPage.Execute(w, v)
}
