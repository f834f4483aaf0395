//go:build !linux

package files

func platformStrategy() copyStrategy {
	return bufferedStrategy{}
}
