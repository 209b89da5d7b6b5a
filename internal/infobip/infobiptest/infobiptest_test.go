package infobiptest

import (
	"sync"
	"testing"
)

func TestServer_CloseConcurrently(t *testing.T) {
	s := NewServer()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()
	s.Close()
}
