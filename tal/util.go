package tal

func abs[T int | int64](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
