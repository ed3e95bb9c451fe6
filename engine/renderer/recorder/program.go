package recorder

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// Program is a renderer.Program that needs no shader source: a key, a texture slot count and a set of
// uniform block names. Texture slot i samples texture unit i.
type Program struct {
	key    string
	slots  int
	blocks map[string]struct{}
}

var _ renderer.Program = &Program{}

// NewProgram creates a Program.
//
// Parameters:
//   - key: the program key
//   - textureSlots: the number of textures one draw can sample
//   - uniformBlocks: the names of the uniform blocks the program declares
//
// Returns:
//   - *Program: the new program
func NewProgram(key string, textureSlots int, uniformBlocks ...string) *Program {
	p := &Program{
		key:    key,
		slots:  textureSlots,
		blocks: make(map[string]struct{}, len(uniformBlocks)),
	}
	for _, b := range uniformBlocks {
		p.blocks[b] = struct{}{}
	}
	return p
}

func (p *Program) Key() string {
	return p.key
}

func (p *Program) TextureSlotCount() int {
	return p.slots
}

func (p *Program) TextureUnit(slot int) (int, bool) {
	if slot < 0 || slot >= p.slots {
		return 0, false
	}
	return slot, true
}

func (p *Program) HasUniformBlock(name string) bool {
	_, ok := p.blocks[name]
	return ok
}
