package lights

// PhotonBudget distributes total photons over lights proportionally to the
// length of each light's color: count_i = round(total * |c_i| / sum |c_j|).
// Nil lights get zero photons and do not contribute to the total power.
func PhotonBudget(lights []Light, total int) []int {
	counts := make([]int, len(lights))
	if total <= 0 {
		return counts
	}

	totalPower := 0.0
	for _, light := range lights {
		if light == nil {
			continue
		}
		totalPower += light.Color().Length()
	}
	if totalPower == 0 {
		return counts
	}

	for i, light := range lights {
		if light == nil {
			continue
		}
		proportion := light.Color().Length() / totalPower
		counts[i] = int(proportion*float64(total) + 0.5)
	}
	return counts
}
