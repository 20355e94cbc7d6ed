package server

import (
	"encoding/json"
	"net/http"

	"github.com/dpshade/pocket-madlibs/internal/renderer"
)

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(getOpenAPISpec())
}

type object = map[string]interface{}

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema object) object {
	return object{"application/json": object{"schema": schema}}
}

// envelope wraps a data schema in the APIResponse envelope
func envelope(data object) object {
	return object{"allOf": []object{
		ref("APIResponse"),
		{"type": "object", "properties": object{"data": data}},
	}}
}

func response(description string, schema object) object {
	return object{"description": description, "content": jsonContent(schema)}
}

var (
	errorResponse = func(description string) object { return response(description, ref("ErrorResponse")) }
	idParameter   = object{
		"name": "id", "in": "path", "required": true,
		"description": "Template id", "schema": object{"type": "string"},
	}
)

// getOpenAPISpec returns the OpenAPI 3.0 specification of the JSON API
func getOpenAPISpec() object {
	return object{
		"openapi": "3.0.3",
		"info": object{
			"title":       "Pocket Mad Libs API",
			"description": "Browse stories, save answers and read the finished stories",
			"version":     "1.0.0",
		},
		"servers": []object{{"url": "/api/v1"}},
		"paths": object{
			"/health": object{"get": object{
				"summary":   "Service health",
				"responses": object{"200": response("Service is up", envelope(ref("Health")))},
			}},
			"/templates": object{"get": object{
				"summary": "List templates",
				"parameters": []object{{
					"name": "q", "in": "query", "required": false,
					"description": "Fuzzy search over name, description and id",
					"schema":      object{"type": "string"},
				}},
				"responses": object{"200": response("Templates in catalog order",
					envelope(object{"type": "array", "items": ref("TemplateSummary")}))},
			}},
			"/templates/{id}": object{"get": object{
				"summary":    "Get one template",
				"parameters": []object{idParameter},
				"responses": object{
					"200": response("The template", envelope(ref("TemplateSummary"))),
					"404": errorResponse("Unknown template"),
				},
			}},
			"/answers/{id}": object{
				"get": object{
					"summary":    "Saved answers",
					"parameters": []object{idParameter},
					"responses": object{
						"200": response("Answers by slot id", envelope(ref("AnswerSet"))),
						"404": errorResponse("Unknown template (TEMPLATE_NOT_FOUND) or nothing saved (NO_SAVED_ANSWERS)"),
					},
				},
				"put": object{
					"summary":     "Save a complete answer set",
					"parameters":  []object{idParameter},
					"requestBody": object{"required": true, "content": jsonContent(ref("AnswerSet"))},
					"responses": object{
						"200": response("Saved", envelope(ref("AnswerSet"))),
						"400": errorResponse("Malformed body, unknown slot or a blank left empty"),
						"404": errorResponse("Unknown template"),
					},
				},
				"delete": object{
					"summary": "Clear saved answers",
					"parameters": []object{idParameter, {
						"name": "confirm", "in": "query", "required": true,
						"description": "Must be true; resets are never implicit",
						"schema":      object{"type": "boolean"},
					}},
					"responses": object{
						"200": response("Cleared", ref("APIResponse")),
						"404": errorResponse("Unknown template"),
						"412": errorResponse("Missing confirm=true"),
					},
				},
			},
			"/stories/{id}": object{"get": object{
				"summary": "Read a story",
				"parameters": []object{idParameter, {
					"name": "format", "in": "query", "required": false,
					"description": "Return the story as formatted text instead of segments",
					"schema":      object{"type": "string", "enum": renderer.Formats},
				}},
				"responses": object{
					"200": response("The story", envelope(ref("Story"))),
					"404": errorResponse("Unknown template"),
					"409": errorResponse("Answers are missing or incomplete"),
				},
			}},
		},
		"components": object{"schemas": object{
			"APIResponse": object{
				"type": "object",
				"properties": object{
					"success":   object{"type": "boolean"},
					"data":      object{},
					"message":   object{"type": "string"},
					"timestamp": object{"type": "string", "format": "date-time"},
				},
				"required": []string{"success", "timestamp"},
			},
			"Health": object{
				"type": "object",
				"properties": object{
					"status":    object{"type": "string"},
					"service":   object{"type": "string"},
					"templates": object{"type": "integer"},
				},
			},
			"WordSlot": object{
				"type": "object",
				"properties": object{
					"id":      object{"type": "string"},
					"type":    object{"type": "string"},
					"label":   object{"type": "string"},
					"example": object{"type": "string"},
				},
				"required": []string{"id", "label"},
			},
			"TemplateSummary": object{
				"type": "object",
				"properties": object{
					"id":            object{"type": "string"},
					"name":          object{"type": "string"},
					"description":   object{"type": "string"},
					"expectedWords": object{"type": "array", "items": ref("WordSlot")},
					"template":      object{"type": "string"},
					"completed":     object{"type": "boolean"},
				},
			},
			"AnswerSet": object{
				"type":                 "object",
				"additionalProperties": object{"type": "string"},
			},
			"Segment": object{
				"type": "object",
				"properties": object{
					"kind":   object{"type": "string", "enum": []string{"text", "answer"}},
					"text":   object{"type": "string"},
					"slotId": object{"type": "string"},
					"label":  object{"type": "string"},
				},
				"required": []string{"kind", "text"},
			},
			"Story": object{
				"type": "object",
				"properties": object{
					"templateId": object{"type": "string"},
					"title":      object{"type": "string"},
					"paragraphs": object{"type": "array", "items": object{
						"type": "object",
						"properties": object{
							"segments": object{"type": "array", "items": ref("Segment")},
						},
					}},
				},
			},
			"ErrorResponse": object{
				"type": "object",
				"properties": object{
					"error": object{
						"type": "object",
						"properties": object{
							"code":      object{"type": "string"},
							"message":   object{"type": "string"},
							"details":   object{"type": "string"},
							"category":  object{"type": "string"},
							"severity":  object{"type": "string"},
							"timestamp": object{"type": "string", "format": "date-time"},
						},
						"required": []string{"code", "message"},
					},
				},
				"required": []string{"error"},
			},
		}},
	}
}
