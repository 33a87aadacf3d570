// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/ros2": {
            "post": {
                "tags": ["bridge"],
                "summary": "Execute a shell command",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.CommandRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CommandResponse"}},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Sign up", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/robot/state": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["robot"], "summary": "Get robot state", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DashboardSnapshot"}}}}
        },
        "/api/v1/robot/check": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["robot"], "summary": "Check connection now", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/robot/battery": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["robot"], "summary": "Refresh battery level", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/pairing": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["pairing"], "summary": "Get pairing wizard status", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PairingStatus"}}}}
        },
        "/api/v1/pairing/begin": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pairing"], "summary": "Begin pairing", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/pairing/submit": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pairing"], "summary": "Submit robot number", "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/pairing/reset": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pairing"], "summary": "Reset pairing", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/pairing/disconnect": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pairing"], "summary": "Disconnect robot", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teleop": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["teleop"], "summary": "Get teleop status", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teleop/velocity": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["teleop"], "summary": "Set velocity", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teleop/nudge": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["teleop"], "summary": "Step velocity in a direction", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teleop/stop": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["teleop"], "summary": "Stop the robot", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teleop/key": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["teleop"], "summary": "Handle a key press", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/terminal": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["terminal"], "summary": "Run a terminal command", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["terminal"], "summary": "Recent commands", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["terminal"], "summary": "Clear history", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/topics": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["topics"], "summary": "List topics", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/topics/info": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["topics"], "summary": "Topic info", "parameters": [{"in": "query", "name": "name", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/topics/echo": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["topics"], "summary": "Echo one message", "parameters": [{"in": "query", "name": "name", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/interfaces/show": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["topics"], "summary": "Show interface definition", "parameters": [{"in": "query", "name": "type", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/video": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["video"], "summary": "Video server status", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/video/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["video"], "summary": "Start video server", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/video/stop": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["video"], "summary": "Stop video server", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List robot events", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "models.CommandRequest": {
            "type": "object",
            "properties": {"command": {"type": "string", "example": "ros2 topic list -t"}}
        },
        "models.CommandResponse": {
            "type": "object",
            "properties": {"output": {"type": "string"}, "error": {"type": "string"}}
        },
        "models.PairingStatus": {
            "type": "object",
            "properties": {
                "attempt_id": {"type": "string"},
                "step": {"type": "integer"},
                "step_name": {"type": "string"},
                "stage": {"type": "integer"},
                "is_loading": {"type": "boolean"},
                "log": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "robot_number": {"type": "integer"},
                "robot_paired": {"type": "boolean"}
            }
        },
        "models.DashboardSnapshot": {
            "type": "object",
            "properties": {
                "robot": {"type": "object"},
                "pairing": {"$ref": "#/definitions/models.PairingStatus"},
                "monitor": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Robot Dashboard API",
	Description:      "Command bridge, pairing wizard and teleoperation for a TurtleBot3.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
