// Package passkey holds the OpenAPI document served at /swagger/.
//
// Regenerate with: swag init -g internal/passkey/http/router.go -o api/passkey
package passkey

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/passkey"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register/prepare": {
            "post": {
                "description": "Validates an invite and returns WebAuthn credential creation options. The relying party id is the request hostname.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Registration"],
                "summary": "Start Passkey Registration",
                "parameters": [
                    {
                        "description": "Invite token and display name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/passkeysdk.RegisterPrepareRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "challengeId, publicKey, role", "schema": {"$ref": "#/definitions/passkeysdk.RegisterPrepareResponse"}},
                    "400": {"description": "invalid, used or expired invite", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/register/finish": {
            "post": {
                "description": "Verifies the attestation, creates the user and credential, consumes the invite and returns a session token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Registration"],
                "summary": "Complete Passkey Registration",
                "parameters": [
                    {
                        "description": "Challenge id and attestation",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/passkeysdk.RegisterFinishRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success, user, token", "schema": {"$ref": "#/definitions/passkeysdk.AuthResponse"}},
                    "400": {"description": "challenge, origin or invite error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "user or credential creation failed", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/login/prepare": {
            "post": {
                "description": "Returns WebAuthn credential request options. With a userId the user's active credentials are listed in allowCredentials.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Login"],
                "summary": "Start Passkey Login",
                "parameters": [
                    {
                        "description": "Optional user id",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/passkeysdk.LoginPrepareRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "challengeId, publicKey", "schema": {"$ref": "#/definitions/passkeysdk.LoginPrepareResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/login/finish": {
            "post": {
                "description": "Verifies the assertion signature and counter and returns a session token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Login"],
                "summary": "Complete Passkey Login",
                "parameters": [
                    {
                        "description": "Challenge id and assertion",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/passkeysdk.LoginFinishRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success, user, token", "schema": {"$ref": "#/definitions/passkeysdk.AuthResponse"}},
                    "400": {"description": "challenge, origin or counter error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "401": {"description": "signature invalid", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "403": {"description": "user deactivated", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "404": {"description": "credential not found", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/invite/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Mint a single-use registration invite. Admin-only; the caller's role and active flag are re-checked against the store.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Generate Invite",
                "parameters": [
                    {
                        "description": "Role and lifetime",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/passkeysdk.GenerateInviteRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success, inviteToken, inviteUrl, expiresAt", "schema": {"$ref": "#/definitions/passkeysdk.GenerateInviteResponse"}},
                    "400": {"description": "invalid role or expiry", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "401": {"description": "missing or invalid token", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "403": {"description": "caller is not an active admin", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/user/delete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Remove an account and its credentials. Admin-only; admins cannot delete themselves.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Delete User",
                "parameters": [
                    {
                        "description": "Account to delete",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/passkeysdk.DeleteUserRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success, message, deletedUserId", "schema": {"$ref": "#/definitions/passkeysdk.DeleteUserResponse"}},
                    "400": {"description": "missing id, unknown user or self-deletion", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "401": {"description": "missing or invalid token", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "403": {"description": "caller is not an active admin", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}},
                    "500": {"description": "internal server error", "schema": {"$ref": "#/definitions/passkeysdk.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information\nThis endpoint always returns 200 OK if the service is running",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/passkeysdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe endpoint returning service health status and the database check",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/passkeysdk.HealthResponse"}},
                    "503": {"description": "status, uptime, version, checks - service not ready", "schema": {"$ref": "#/definitions/passkeysdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "passkeysdk.RegisterPrepareRequest": {
            "type": "object",
            "properties": {
                "inviteToken": {"type": "string"},
                "displayName": {"type": "string"}
            }
        },
        "passkeysdk.RegisterPrepareResponse": {
            "type": "object",
            "properties": {
                "challengeId": {"type": "string"},
                "publicKey": {"$ref": "#/definitions/webauthnx.CreationOptions"},
                "role": {"type": "string"}
            }
        },
        "passkeysdk.RegisterFinishRequest": {
            "type": "object",
            "properties": {
                "challengeId": {"type": "string"},
                "attestation": {"$ref": "#/definitions/webauthnx.AttestationCredential"},
                "displayName": {"type": "string"}
            }
        },
        "passkeysdk.LoginPrepareRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"}
            }
        },
        "passkeysdk.LoginPrepareResponse": {
            "type": "object",
            "properties": {
                "challengeId": {"type": "string"},
                "publicKey": {"$ref": "#/definitions/webauthnx.RequestOptions"}
            }
        },
        "passkeysdk.LoginFinishRequest": {
            "type": "object",
            "properties": {
                "challengeId": {"type": "string"},
                "assertion": {"$ref": "#/definitions/webauthnx.AssertionCredential"}
            }
        },
        "passkeysdk.UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "displayName": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "passkeysdk.AuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "user": {"$ref": "#/definitions/passkeysdk.UserSummary"},
                "token": {"type": "string"}
            }
        },
        "passkeysdk.GenerateInviteRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "expiresInHours": {"type": "integer"}
            }
        },
        "passkeysdk.GenerateInviteResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "inviteToken": {"type": "string"},
                "inviteUrl": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "passkeysdk.DeleteUserRequest": {
            "type": "object",
            "properties": {
                "userIdToDelete": {"type": "string"}
            }
        },
        "passkeysdk.DeleteUserResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "deletedUserId": {"type": "string"}
            }
        },
        "passkeysdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "passkeysdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"}
            }
        },
        "passkeysdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/passkeysdk.HealthChecks"}
            }
        },
        "webauthnx.CreationOptions": {
            "type": "object",
            "properties": {
                "challenge": {"type": "string"},
                "rp": {"type": "object"},
                "user": {"type": "object"},
                "pubKeyCredParams": {"type": "array", "items": {"type": "object"}},
                "authenticatorSelection": {"type": "object"},
                "timeout": {"type": "integer"},
                "attestation": {"type": "string"}
            }
        },
        "webauthnx.RequestOptions": {
            "type": "object",
            "properties": {
                "challenge": {"type": "string"},
                "timeout": {"type": "integer"},
                "rpId": {"type": "string"},
                "userVerification": {"type": "string"},
                "allowCredentials": {"type": "array", "items": {"type": "object"}}
            }
        },
        "webauthnx.AttestationCredential": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "rawId": {"type": "string"},
                "type": {"type": "string"},
                "response": {"type": "object"}
            }
        },
        "webauthnx.AssertionCredential": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "rawId": {"type": "string"},
                "type": {"type": "string"},
                "response": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Passkey Authentication Service API",
	Description:      "Invite-gated WebAuthn passkey registration and login.\n\nSuccessful ceremonies return an HS256 session token valid for 30 days.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
