// Package recorder provides a headless renderer.Backend that records every command it receives instead of
// talking to a GPU. It backs the package tests of the batching layer and the -headless mode of the demo.
//
// Commands are captured as plain values so a test can assert on exactly which GPU calls a frame issued:
//
//	rec := recorder.New()
//	rp := renderpass.New(rec)
//	rp.SubmitQuad(q, prog, transform.Identity(), cam)
//	rp.FlushFrame()
//	rec.Count(recorder.CmdIssueIndexedDraw) // 1
package recorder

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// CommandType identifies the backend operation a Command records.
type CommandType uint8

const (
	CmdCreateGeometry     CommandType = iota // CreateGeometryHandle
	CmdUploadVertexData                      // UploadVertexData
	CmdUploadIndexData                       // UploadIndexData
	CmdBindGeometry                          // BindGeometry
	CmdBindShaderProgram                     // BindShaderProgram
	CmdUploadUniformBlock                    // UploadUniformBlock
	CmdBindTextureToSlot                     // BindTextureToSlot
	CmdIssueIndexedDraw                      // IssueIndexedDraw
	CmdCreateTexture                         // CreateTexture
	CmdReleaseGeometry                       // Geometry.Release
)

var commandTypeNames = [...]string{
	CmdCreateGeometry:     "CreateGeometry",
	CmdUploadVertexData:   "UploadVertexData",
	CmdUploadIndexData:    "UploadIndexData",
	CmdBindGeometry:       "BindGeometry",
	CmdBindShaderProgram:  "BindShaderProgram",
	CmdUploadUniformBlock: "UploadUniformBlock",
	CmdBindTextureToSlot:  "BindTextureToSlot",
	CmdIssueIndexedDraw:   "IssueIndexedDraw",
	CmdCreateTexture:      "CreateTexture",
	CmdReleaseGeometry:    "ReleaseGeometry",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded backend call. Only the fields relevant to Type are set.
type Command struct {
	Type CommandType

	// Name is the geometry label, uniform block name or texture label.
	Name string
	// Slot is the texture unit of a BindTextureToSlot.
	Slot int
	// Count is the vertex count of a vertex upload and the index count of an index upload or draw.
	Count int
	// Bytes is a copy of the uploaded data.
	Bytes []byte

	Geometry renderer.Geometry
	Program  renderer.Program
	Texture  texture.Texture
}
