package mcp

import (
	"encoding/json"

	"github.com/aidanlsb/rook/internal/roam"
)

// Resource describes one MCP resource.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is the payload returned by resources/read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

const (
	agentGuideURI = "rook://guide/agent"
	graphListURI  = "rook://graphs"
)

func (s *Server) handleResourcesList(req *Request) {
	resources := []Resource{
		{
			URI:         agentGuideURI,
			Name:        "Rook Agent Guide",
			Description: "How to use rook's tools effectively against a Roam graph",
			MimeType:    "text/markdown",
		},
		{
			URI:         graphListURI,
			Name:        "Configured Graphs",
			Description: "Graphs this machine is connected to, with nicknames and access levels",
			MimeType:    "application/json",
		},
	}
	s.sendResult(req.ID, map[string]interface{}{"resources": resources})
}

func (s *Server) handleResourcesRead(req *Request) {
	var params struct {
		URI string `json:"uri"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}

	var content ResourceContent
	switch params.URI {
	case agentGuideURI:
		content = ResourceContent{URI: agentGuideURI, MimeType: "text/markdown", Text: getAgentGuide()}
	case graphListURI:
		text, err := s.readGraphListResource()
		if err != nil {
			s.sendError(req.ID, -32603, "Internal error", err.Error())
			return
		}
		content = ResourceContent{URI: graphListURI, MimeType: "application/json", Text: text}
	default:
		s.sendError(req.ID, -32602, "Resource not found", params.URI)
		return
	}

	s.sendResult(req.ID, map[string]interface{}{"contents": []ResourceContent{content}})
}

type graphResource struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	AccessLevel string `json:"accessLevel,omitempty"`
	TokenStatus string `json:"tokenStatus,omitempty"`
}

// readGraphListResource summarizes the connection store for agents deciding
// which graph argument to pass. Tokens never leave the store.
func (s *Server) readGraphListResource() (string, error) {
	conns, err := s.store.Load()
	if err != nil {
		// An empty machine is a valid state, not a read failure.
		if roam.CodeOf(err) == roam.ErrCodeConfigNotFound {
			conns = nil
		} else {
			return "", err
		}
	}

	graphs := make([]graphResource, 0, len(conns))
	for _, conn := range conns {
		graphs = append(graphs, graphResource{
			Nickname:    conn.Nickname,
			Name:        conn.Name,
			Type:        conn.Type,
			AccessLevel: conn.AccessLevel,
			TokenStatus: conn.LastKnownTokenStatus,
		})
	}

	data, err := json.MarshalIndent(map[string]interface{}{"graphs": graphs}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
