package domain

import (
	"strings"

	apperror "furnistock/internal/errors"
)

// NewDescriptor constrói um Descriptor validado a partir do tipo e dos atributos informados.
// Atributos extras são ignorados. Não acessa banco nem rede.
//
// Ordem das verificações: tipo desconhecido, depois atributos ausentes, depois tipos inválidos.
// Um valor nil conta como ausente.
func NewDescriptor(kind string, attributes map[string]interface{}) (Descriptor, error) {
	k, ok := ParseVariantKind(kind)
	if !ok {
		return Descriptor{}, apperror.NewUnknownVariantKindError(kind)
	}

	required := k.RequiredAttributes()
	for _, name := range required {
		if v, present := attributes[name]; !present || v == nil {
			return Descriptor{}, apperror.NewMissingAttributeError(string(k), name)
		}
	}

	color, err := textAttribute(k, attributes, AttrColor)
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{Kind: k, Color: color}

	switch k.Family() {
	case FamilyTable:
		material, err := textAttribute(k, attributes, AttrMaterial)
		if err != nil {
			return Descriptor{}, err
		}
		d.Table = &TableAttributes{Material: material}
	case FamilyChair:
		adjustable, err := boolAttribute(attributes, AttrIsAdjustable)
		if err != nil {
			return Descriptor{}, err
		}
		armrest, err := boolAttribute(attributes, AttrHasArmrest)
		if err != nil {
			return Descriptor{}, err
		}
		d.Chair = &ChairAttributes{IsAdjustable: adjustable, HasArmrest: armrest}
	}

	return d, nil
}

// textAttribute exige string não vazia. O valor é mantido como veio (sem case folding).
func textAttribute(kind VariantKind, attributes map[string]interface{}, name string) (string, error) {
	s, ok := attributes[name].(string)
	if !ok {
		return "", apperror.NewInvalidAttributeTypeError(name, "texto", attributes[name])
	}
	if strings.TrimSpace(s) == "" {
		return "", apperror.NewMissingAttributeError(string(kind), name)
	}
	return s, nil
}

// boolAttribute não faz coerção: "true" ou 1 são rejeitados.
func boolAttribute(attributes map[string]interface{}, name string) (bool, error) {
	b, ok := attributes[name].(bool)
	if !ok {
		return false, apperror.NewInvalidAttributeTypeError(name, "booleano", attributes[name])
	}
	return b, nil
}
