package production

import "math"

// EffectiveDimension - расчётная длина изделия для формул стоимости:
// ширина+высота для прямоугольных и овальных, 2*диаметр для круглых,
// минус отход материала для данного края. Не бывает отрицательной.
func EffectiveDimension(p Product, cfg CostConfig) float64 {
	var dim float64
	switch p.Shape {
	case ShapeRound:
		dim = 2 * float64(p.Diameter)
	default:
		dim = float64(p.Width + p.Height)
	}

	if p.EdgeType != "" {
		dim -= cfg.MaterialWaste[string(p.EdgeType)]
	}

	if dim < 0 {
		return 0
	}
	return dim
}

// ActionCost считает стоимость одного действия по текущей конфигурации.
// Чистая функция: никаких обращений к базе, никаких ошибок. Отсутствующий
// коэффициент для края означает нулевой вклад, а не падение.
func ActionCost(p Product, actionType ActionType, quantity int, cfg CostConfig) float64 {
	eff := EffectiveDimension(p, cfg)

	var unit float64
	switch actionType {
	case ActionCutting:
		unit = cfg.CuttingFactor*eff + cfg.LagFactor

	case ActionSewing:
		corner := cfg.CornerSewingFactors[string(p.EdgeType)]
		sewing := cfg.SewingFactors[string(p.EdgeType)]
		unit = 4*corner + 2*eff*0.01*sewing

	case ActionIroning:
		// Края U3/U4/U5 не гладятся
		switch p.EdgeType {
		case EdgeU3, EdgeU4, EdgeU5:
			return 0
		}
		unit = cfg.IroningFactor * eff

	case ActionPacking:
		unit = cfg.PrepackingFactor + cfg.PackingFactor*eff + cfg.PackagingMaterialsPrice
	}

	cost := unit * float64(quantity)
	if cost < 0 {
		return 0
	}
	return round2(cost)
}

// MissingFactors возвращает имена коэффициентов, отсутствующих в конфигурации
// для края изделия. Стоимость всё равно считается (вклад нулевой), но сервис
// пишет предупреждение в лог для оператора.
func MissingFactors(p Product, cfg CostConfig) []string {
	if p.EdgeType == "" {
		return nil
	}

	var missing []string
	key := string(p.EdgeType)
	if _, ok := cfg.CornerSewingFactors[key]; !ok {
		missing = append(missing, "corner_sewing_factors."+key)
	}
	if _, ok := cfg.SewingFactors[key]; !ok {
		missing = append(missing, "sewing_factors."+key)
	}
	if _, ok := cfg.MaterialWaste[key]; !ok {
		missing = append(missing, "material_waste."+key)
	}
	return missing
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
