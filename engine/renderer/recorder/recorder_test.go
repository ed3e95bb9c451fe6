package recorder

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

func TestRecorderRecordsDrawSequence(t *testing.T) {
	rec := New()
	prog := NewProgram("sprite", 2, renderer.UniformBlockView)
	tex := NewTexture("atlas", 4, 4)

	g, err := rec.CreateGeometryHandle("quads", renderer.SpriteVertexSchema)
	if err != nil {
		t.Fatalf("CreateGeometryHandle() error = %v", err)
	}
	if err := rec.UploadVertexData(g, make([]byte, 4*24), 4); err != nil {
		t.Fatalf("UploadVertexData() error = %v", err)
	}
	if err := rec.UploadIndexData(g, make([]byte, 6*4), 6); err != nil {
		t.Fatalf("UploadIndexData() error = %v", err)
	}
	if err := rec.BindGeometry(g); err != nil {
		t.Fatalf("BindGeometry() error = %v", err)
	}
	if err := rec.BindShaderProgram(prog); err != nil {
		t.Fatalf("BindShaderProgram() error = %v", err)
	}
	if err := rec.UploadUniformBlock(renderer.UniformBlockView, make([]byte, 192)); err != nil {
		t.Fatalf("UploadUniformBlock() error = %v", err)
	}
	if err := rec.BindTextureToSlot(1, tex); err != nil {
		t.Fatalf("BindTextureToSlot() error = %v", err)
	}
	if err := rec.IssueIndexedDraw(g, g.IndexCount()); err != nil {
		t.Fatalf("IssueIndexedDraw() error = %v", err)
	}

	want := []CommandType{
		CmdCreateGeometry, CmdUploadVertexData, CmdUploadIndexData, CmdBindGeometry,
		CmdBindShaderProgram, CmdUploadUniformBlock, CmdBindTextureToSlot, CmdIssueIndexedDraw,
	}
	got := rec.Commands()
	if len(got) != len(want) {
		t.Fatalf("len(Commands()) = %d, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.Type != want[i] {
			t.Errorf("Commands()[%d] = %v, want %v", i, c.Type, want[i])
		}
	}
	if draw := got[len(got)-1]; draw.Count != 6 {
		t.Errorf("draw Count = %d, want 6", draw.Count)
	}
	if g.VertexBufferCount() != 1 || !g.HasIndexBuffer() {
		t.Errorf("geometry buffers = %d vertex, index %v; want 1, true", g.VertexBufferCount(), g.HasIndexBuffer())
	}
}

func TestRecorderValidation(t *testing.T) {
	rec := New()
	g, _ := rec.CreateGeometryHandle("g", renderer.SpriteVertexSchema)

	if err := rec.UploadUniformBlock(renderer.UniformBlockView, nil); !errors.Is(err, renderer.ErrNoProgramBound) {
		t.Errorf("UploadUniformBlock() without program error = %v, want ErrNoProgramBound", err)
	}
	if err := rec.BindShaderProgram(nil); !errors.Is(err, renderer.ErrNilProgram) {
		t.Errorf("BindShaderProgram(nil) error = %v, want ErrNilProgram", err)
	}
	if err := rec.BindGeometry(nil); !errors.Is(err, renderer.ErrNilGeometry) {
		t.Errorf("BindGeometry(nil) error = %v, want ErrNilGeometry", err)
	}

	_ = rec.BindShaderProgram(NewProgram("p", 1))
	if err := rec.UploadUniformBlock("lighting", nil); !errors.Is(err, renderer.ErrUnknownUniformBlock) {
		t.Errorf("UploadUniformBlock(unknown) error = %v, want ErrUnknownUniformBlock", err)
	}
	if err := rec.BindTextureToSlot(3, NewTexture("t", 1, 1)); err == nil {
		t.Error("BindTextureToSlot(3) error = nil, want error for unit outside program")
	}
	if err := rec.UploadVertexData(g, make([]byte, 10), 1); err == nil {
		t.Error("UploadVertexData() with bad length error = nil, want error")
	}

	g.Release()
	if err := rec.BindGeometry(g); !errors.Is(err, renderer.ErrReleased) {
		t.Errorf("BindGeometry(released) error = %v, want ErrReleased", err)
	}
	if rec.Count(CmdReleaseGeometry) != 1 {
		t.Errorf("Count(CmdReleaseGeometry) = %d, want 1", rec.Count(CmdReleaseGeometry))
	}
}

func TestGeometryReusesStorage(t *testing.T) {
	rec := New()
	g, _ := rec.CreateGeometryHandle("g", renderer.SpriteVertexSchema)
	rg := g.(*Geometry)

	_ = rec.UploadVertexData(g, make([]byte, 8*24), 8)
	_ = rec.UploadVertexData(g, make([]byte, 4*24), 4)
	_ = rec.UploadVertexData(g, make([]byte, 8*24), 8)
	if rg.Allocations() != 1 {
		t.Errorf("Allocations() = %d, want 1", rg.Allocations())
	}

	_ = rec.UploadVertexData(g, nil, 0)
	if g.VertexBufferCount() != 0 || g.VertexCount() != 0 {
		t.Errorf("after empty upload VertexBufferCount() = %d, VertexCount() = %d; want 0, 0", g.VertexBufferCount(), g.VertexCount())
	}
}

func TestWithFailure(t *testing.T) {
	boom := errors.New("boom")
	rec := New(WithFailure(CmdCreateGeometry, boom))
	if _, err := rec.CreateGeometryHandle("g", renderer.SpriteVertexSchema); !errors.Is(err, boom) {
		t.Errorf("CreateGeometryHandle() error = %v, want boom", err)
	}
	if rec.Count(CmdCreateGeometry) != 1 {
		t.Errorf("failed command not recorded")
	}
}

func TestCreateTexture(t *testing.T) {
	rec := New()
	tex, err := rec.CreateTexture("white", common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.Width() != 1 || tex.Height() != 1 || tex.Label() != "white" {
		t.Errorf("texture = %q %dx%d, want white 1x1", tex.Label(), tex.Width(), tex.Height())
	}
	if _, err := rec.CreateTexture("bad", common.TextureStagingData{Pixels: []byte{1}, Width: 1, Height: 1}); err == nil {
		t.Error("CreateTexture() with short pixels error = nil, want error")
	}
}
