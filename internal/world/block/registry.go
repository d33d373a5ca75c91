package block

import (
	"errors"
	"fmt"
	"sort"
)

// Ошибки реестра блоков
var (
	// ErrUnknownBlockType возвращается при запросе незарегистрированного ID
	ErrUnknownBlockType = errors.New("unknown block type")
	// ErrInvalidBlock возвращается при регистрации некорректного описания блока
	ErrInvalidBlock = errors.New("invalid block definition")
)

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID встроенных блоков. Воздуха среди них нет: отсутствие блока и есть воздух.
const (
	BrickBlockID BlockID = iota // 0
	GlassBlockID                // 1
	DirtBlockID                 // 2
	GrassBlockID                // 3
)

// Properties описывает свойства типа блока для рендеринга и физики
type Properties struct {
	Name    string // Человекочитаемое имя
	Texture string // Ссылка на текстуру (имя файла атласа)
	Solid   bool   // Закрывает ли блок грани соседей
}

// Registry — неизменяемая таблица свойств блоков.
// Заполняется один раз при создании, после чего только читается,
// поэтому безопасна для конкурентного использования без блокировок.
type Registry struct {
	props map[BlockID]Properties
}

// NewRegistry создаёт реестр из набора описаний
func NewRegistry(defs map[BlockID]Properties) (*Registry, error) {
	props := make(map[BlockID]Properties, len(defs))
	names := make(map[string]BlockID, len(defs))

	for id, p := range defs {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: block %d has no name", ErrInvalidBlock, id)
		}
		if p.Texture == "" {
			return nil, fmt.Errorf("%w: block %q has no texture", ErrInvalidBlock, p.Name)
		}
		if other, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("%w: name %q used by blocks %d and %d", ErrInvalidBlock, p.Name, other, id)
		}
		names[p.Name] = id
		props[id] = p
	}

	return &Registry{props: props}, nil
}

// DefaultProperties возвращает встроенный набор блоков
func DefaultProperties() map[BlockID]Properties {
	return map[BlockID]Properties{
		BrickBlockID: {Name: "brick", Texture: "brick.png", Solid: true},
		GlassBlockID: {Name: "glass", Texture: "glass.png", Solid: false},
		DirtBlockID:  {Name: "dirt", Texture: "dirt.png", Solid: true},
		GrassBlockID: {Name: "grass", Texture: "grass.png", Solid: true},
	}
}

// DefaultRegistry возвращает реестр со встроенными блоками
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultProperties())
	if err != nil {
		// Встроенная таблица статична, ошибка здесь — ошибка программиста
		panic(err)
	}
	return r
}

// Properties возвращает свойства блока или ErrUnknownBlockType
func (r *Registry) Properties(id BlockID) (Properties, error) {
	p, ok := r.props[id]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %d", ErrUnknownBlockType, id)
	}
	return p, nil
}

// IsSolid возвращает флаг твёрдости; неизвестные ID считаются нетвёрдыми
func (r *Registry) IsSolid(id BlockID) bool {
	return r.props[id].Solid
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func (r *Registry) IsValidBlockID(id BlockID) bool {
	_, exists := r.props[id]
	return exists
}

// IDs возвращает отсортированный список зарегистрированных ID
func (r *Registry) IDs() []BlockID {
	ids := make([]BlockID, 0, len(r.props))
	for id := range r.props {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len возвращает количество типов блоков
func (r *Registry) Len() int {
	return len(r.props)
}
