package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /v1/feed/{collection}", RequireActor(http.HandlerFunc(handler.GetFeed)))
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerRosterRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /v1/players", RequireActor(http.HandlerFunc(handler.ListPlayers)))
	mux.Handle("POST /v1/players", RequireActor(http.HandlerFunc(handler.RegisterPlayer)))
	mux.Handle("POST /v1/players/availability/reset", RequireActor(http.HandlerFunc(handler.ResetAvailability)))
	mux.Handle("GET /v1/players/{playerID}", RequireActor(http.HandlerFunc(handler.GetPlayer)))
	mux.Handle("PATCH /v1/players/{playerID}", RequireActor(http.HandlerFunc(handler.UpdatePlayer)))
	mux.Handle("DELETE /v1/players/{playerID}", RequireActor(http.HandlerFunc(handler.DeletePlayer)))
	mux.Handle("PUT /v1/players/{playerID}/availability", RequireActor(http.HandlerFunc(handler.SetAvailability)))
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("POST /v1/teams/generate", RequireActor(http.HandlerFunc(handler.GenerateTeams)))
	mux.Handle("GET /v1/teams/current", RequireActor(http.HandlerFunc(handler.GetCurrentTeams)))
	mux.Handle("GET /v1/teams/assignments", RequireActor(http.HandlerFunc(handler.GetTeamAssignments)))
	mux.Handle("PUT /v1/teams/assignments/{playerID}", RequireActor(http.HandlerFunc(handler.SetTeamAssignment)))
	mux.Handle("DELETE /v1/teams/assignments", RequireActor(http.HandlerFunc(handler.ClearTeamAssignments)))
}

func registerLedgerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /v1/leaderboard", RequireActor(http.HandlerFunc(handler.GetLeaderboard)))
	mux.Handle("GET /v1/players/{playerID}/ledger", RequireActor(http.HandlerFunc(handler.GetLedger)))
	mux.Handle("POST /v1/players/{playerID}/points", RequireActor(http.HandlerFunc(handler.AwardPoints)))
	mux.Handle("POST /v1/players/{playerID}/adjustments", RequireActor(http.HandlerFunc(handler.AdjustPoints)))
	mux.Handle("POST /v1/players/{playerID}/attendance", RequireActor(http.HandlerFunc(handler.MarkAttendance)))
}

func registerMOTMRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("POST /v1/motm/nominations", RequireActor(http.HandlerFunc(handler.Nominate)))
	mux.Handle("GET /v1/motm/{gameDate}/nominations", RequireActor(http.HandlerFunc(handler.ListNominations)))
	mux.Handle("GET /v1/motm/window", RequireActor(http.HandlerFunc(handler.GetVotingWindow)))
	mux.Handle("GET /v1/motm/{gameDate}/window", RequireActor(http.HandlerFunc(handler.GetVotingWindow)))
	mux.Handle("POST /v1/motm/{gameDate}/resolve", RequireActor(http.HandlerFunc(handler.ResolveMOTM)))
	mux.Handle("GET /v1/motm/awards", RequireActor(http.HandlerFunc(handler.ListAwards)))
	mux.Handle("GET /v1/motm/{gameDate}/award", RequireActor(http.HandlerFunc(handler.GetAward)))
}

func registerSubmissionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("POST /v1/submissions", RequireActor(http.HandlerFunc(handler.SubmitStats)))
	mux.Handle("GET /v1/submissions/pending", RequireActor(http.HandlerFunc(handler.ListPendingSubmissions)))
	mux.Handle("POST /v1/submissions/{submissionID}/approve", RequireActor(http.HandlerFunc(handler.ApproveSubmission)))
	mux.Handle("POST /v1/submissions/{submissionID}/reject", RequireActor(http.HandlerFunc(handler.RejectSubmission)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/awards", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAwardJob)))
}
