package category

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory は登録されていないカテゴリが指定された場合に返却されます。
var ErrUnknownCategory = errors.New("category: unknown category")

// Category は登録済みタスクカテゴリの閉じた列挙です。
type Category int

const (
	PlanDeliveryRoute Category = iota + 1
	AssignCarrier
	LogRouteIncident
	ReceiveStock
	PrepareOrder
	CyclicInventoryCount
)

// Group は表示用のカテゴリ分類です。振る舞いには影響しません。
type Group string

const (
	GroupOperations Group = "operaciones"
	GroupWarehouse  Group = "almacen"
)

type schema struct {
	name     string
	group    Group
	required []string
}

// registry は起動時に一度だけ構築される不変テーブルです。
var registry = map[Category]schema{
	PlanDeliveryRoute:    {name: "planificar_ruta_entrega", group: GroupOperations, required: []string{"origen", "destino", "fechaSalida"}},
	AssignCarrier:        {name: "asignar_transportista", group: GroupOperations, required: []string{"transportista", "vehiculo"}},
	LogRouteIncident:     {name: "registrar_incidencia_ruta", group: GroupOperations, required: []string{"tipoIncidencia", "ubicacion", "gravedad"}},
	ReceiveStock:         {name: "recepcion_mercaderia", group: GroupWarehouse, required: []string{"proveedor", "numeroRemito", "cantidad"}},
	PrepareOrder:         {name: "preparar_pedido", group: GroupWarehouse, required: []string{"numeroPedido", "cliente", "items"}},
	CyclicInventoryCount: {name: "conteo_ciclico_inventario", group: GroupWarehouse, required: []string{"ubicacion", "sku", "cantidadContada"}},
}

var byName = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for c, s := range registry {
		m[s.name] = c
	}
	return m
}()

// All は登録済みカテゴリを宣言順で返します。
func All() []Category {
	return []Category{
		PlanDeliveryRoute,
		AssignCarrier,
		LogRouteIncident,
		ReceiveStock,
		PrepareOrder,
		CyclicInventoryCount,
	}
}

// Parse はカテゴリ名を Category に変換します。
func Parse(name string) (Category, error) {
	c, ok := byName[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// RequiredAttributes はカテゴリ名に対応する必須属性キーを登録順で返します。
func RequiredAttributes(name string) ([]string, error) {
	c, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return c.RequiredAttributes(), nil
}

// String は永続化に用いるカテゴリ名を返します。
func (c Category) String() string {
	if s, ok := registry[c]; ok {
		return s.name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) Group() Group {
	return registry[c].group
}

// RequiredAttributes は必須属性キーのコピーを返します。
func (c Category) RequiredAttributes() []string {
	s, ok := registry[c]
	if !ok {
		return nil
	}
	out := make([]string, len(s.required))
	copy(out, s.required)
	return out
}
