package httpx

import "net/http"

// adminPing confirms the caller holds ROLE_ADMIN.
func adminPing(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipalFromContext(r.Context())
	body := map[string]any{"status": "ok"}
	if p != nil {
		body["subject_id"] = p.SubjectID
	}
	WriteJSON(w, http.StatusOK, body)
}
