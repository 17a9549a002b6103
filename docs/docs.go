// Package docs registers the OpenAPI document served at /swagger.
// Regenerate the paths with `swag init -g cmd/api/main.go` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/staff-auth/login": {"post": {"tags": ["staff-auth"], "summary": "Staff login with an access code", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/api/staff-auth/verify": {"get": {"tags": ["staff-auth"], "summary": "Verify the current staff token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/staff-auth/logout": {"post": {"tags": ["staff-auth"], "summary": "Staff logout", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}},
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current identity", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/access/check": {"post": {"tags": ["access"], "summary": "Decide whether the caller may open a dashboard path", "responses": {"200": {"description": "OK"}}}},
        "/api/access/navigation": {"get": {"security": [{"BearerAuth": []}], "tags": ["access"], "summary": "Navigation entries for the caller", "responses": {"200": {"description": "OK"}}}},
        "/api/requests": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "List requests", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Submit a new request", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/requests/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Get a request with its workflow state", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Edit a request", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Delete a request", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/requests/{id}/workflow": {"get": {"security": [{"BearerAuth": []}], "tags": ["workflow"], "summary": "Workflow record and next possible stages", "responses": {"200": {"description": "OK"}}}},
        "/api/requests/{id}/stage": {"put": {"security": [{"BearerAuth": []}], "tags": ["workflow"], "summary": "Move a request to another stage", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}}},
        "/api/requests/{id}/delegate": {"post": {"security": [{"BearerAuth": []}], "tags": ["workflow"], "summary": "Assign a request to a staff member", "responses": {"200": {"description": "OK"}}}},
        "/api/requests/{id}/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["workflow"], "summary": "Request history, oldest first", "responses": {"200": {"description": "OK"}}}},
        "/api/requests/{id}/comments": {"post": {"security": [{"BearerAuth": []}], "tags": ["workflow"], "summary": "Comment on a request", "responses": {"201": {"description": "Created"}}}},
        "/api/requests/{id}/documents": {"post": {"security": [{"BearerAuth": []}], "tags": ["requests"], "summary": "Attach document metadata", "responses": {"201": {"description": "Created"}}}},
        "/api/notifications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "List the caller's notifications", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Send a notification to a user", "responses": {"201": {"description": "Created"}}}
        },
        "/api/notifications/unread-count": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Number of unread notifications", "responses": {"200": {"description": "OK"}}}},
        "/api/notifications/read-all": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark all notifications as read", "responses": {"200": {"description": "OK"}}}},
        "/api/notifications/{id}/read": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark one notification as read", "responses": {"204": {"description": "No Content"}}}},
        "/api/notifications/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Delete a notification", "responses": {"204": {"description": "No Content"}}}},
        "/api/notifications/stream": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Live notification stream (websocket)", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/api/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List user accounts", "responses": {"200": {"description": "OK"}}}},
        "/api/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get a user account", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Change a user's name, role or status", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete a user account", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/reports/summary": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Request totals for the dashboard", "responses": {"200": {"description": "OK"}}}},
        "/api/activity": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Recent activity, newest first", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BGF Dashboard API",
	Description:      "Grant request workflow, staff access-code sessions and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
