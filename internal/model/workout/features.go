package workout

// FeatureNames is the column order of the training schema. Predictors
// receive values in exactly this order.
var FeatureNames = [NumFeatures]string{
	"Gender", "Age", "Height", "Weight", "Duration", "Heart_Rate", "Body_Temp",
}

// NumFeatures is the width of the model input.
const NumFeatures = 7

// FeatureVector is the ordered model input.
type FeatureVector [NumFeatures]float64

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// Features encodes the input into the model's feature vector. The input is
// used as given; callers clamp it first.
func (in SessionInput) Features() (FeatureVector, error) {
	gender, err := in.Gender.Indicator()
	if err != nil {
		return FeatureVector{}, err
	}
	return FeatureVector{
		gender,
		float64(in.Age),
		in.HeightCm,
		in.WeightKg,
		float64(in.DurationMin),
		float64(in.HeartRateBpm),
		in.BodyTempC,
	}, nil
}
