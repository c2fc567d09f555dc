// pkg/human1/types.go
package human1

import "human1-sdk/internal/models"

// Re-exported so host applications can build requests and custom routes.
type (
	RequestData     = models.RequestData
	Envelope        = models.Envelope
	ResponseData    = models.ResponseData
	ResponseFormat  = models.ResponseFormat
	RouteDefinition = models.RouteDefinition
	RouteHandler    = models.RouteHandler
	HistoryEntry    = models.HistoryEntry
)

const (
	FormatTable     = models.FormatTable
	FormatParagraph = models.FormatParagraph
)
