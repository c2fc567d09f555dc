// internal/routes/routes.go
package routes

import (
	"net/http"

	"human1-sdk/internal/controllers/query"
	"human1-sdk/internal/models"
)

// Default returns the SDK's route table, relative to the mount base path.
func Default(h *query.Handler) []models.RouteDefinition {
	return []models.RouteDefinition{
		{
			Path:        "/hello",
			Method:      http.MethodGet,
			Handler:     h.Hello,
			Description: "Greeting used to check that the SDK routes are mounted",
		},
		{
			Path:        "/query",
			Method:      http.MethodPost,
			Handler:     h.Execute,
			Description: "Translate a natural-language question and return a table or paragraph",
		},
		{
			Path:        "/query/history",
			Method:      http.MethodGet,
			Handler:     h.History,
			Description: "List every answered query in the order it was asked",
		},
	}
}
