package mathx

// MapRound maps x in [inMin,inMax] onto [outMin,outMax]:
//
//	round((x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin)
//
// using 64-bit intermediates and half-away-from-zero rounding. x is clamped to
// the input range first and the result to the output range.
func MapRound(x, inMin, inMax, outMin, outMax int32) int32 {
	if inMax == inMin {
		return outMin
	}
	x = Clamp(x, inMin, inMax)
	num := int64(x-inMin) * (int64(outMax) - int64(outMin))
	den := int64(inMax) - int64(inMin)
	out := RoundDiv(num+int64(outMin)*den, den)
	return int32(Clamp(out, int64(outMin), int64(outMax)))
}
