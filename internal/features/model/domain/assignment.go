package domain

// ToFeatureFirst inverts a stored assignment into the orientation edited by
// the model table. main_id on either axis and blank selections are dropped.
func (a FittingAssignment) ToFeatureFirst() FeatureFirstAssignment {
	inverted := make(FeatureFirstAssignment)
	for target, features := range a {
		if IsReserved(target) {
			continue
		}
		for feature, function := range features {
			if IsReserved(feature) || function == "" {
				continue
			}
			if inverted[feature] == nil {
				inverted[feature] = make(map[string]string)
			}
			inverted[feature][target] = function
		}
	}
	return inverted
}

// FromFeatureFirst inverts the model table's selections into the stored,
// target-first assignment. It is the inverse of ToFeatureFirst.
func FromFeatureFirst(selections FeatureFirstAssignment) FittingAssignment {
	assignments := make(FittingAssignment)
	for feature, targets := range selections {
		if IsReserved(feature) {
			continue
		}
		for target, function := range targets {
			if IsReserved(target) || function == "" {
				continue
			}
			if assignments[target] == nil {
				assignments[target] = make(map[string]string)
			}
			assignments[target][feature] = function
		}
	}
	return assignments
}

// ExpandForHeaders lays the assignment out over the uploaded headers for the
// model table: every feature row has every target column, blank when no
// function is assigned.
func (a FittingAssignment) ExpandForHeaders(featureHeaders, targetHeaders []string) FeatureFirstAssignment {
	table := make(FeatureFirstAssignment)
	for _, feature := range featureHeaders {
		if IsReserved(feature) {
			continue
		}
		row := make(map[string]string)
		for _, target := range targetHeaders {
			if IsReserved(target) {
				continue
			}
			row[target] = a[target][feature]
		}
		table[feature] = row
	}
	return table
}
