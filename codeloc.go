//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// codeLocations records the source sites that have been reported.
var codeLocations struct {
	sync.Mutex
	done map[string]bool
}

// codeLocation logs the caller's source location on its first call
// when the code_locations option is set.
func codeLocation(opts *Options, log *zap.SugaredLogger) {
	if opts == nil || !opts.CodeLocations {
		return
	}
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		return
	}
	key := fmt.Sprintf("%s:%d", file, line)

	codeLocations.Lock()
	defer codeLocations.Unlock()

	if codeLocations.done == nil {
		codeLocations.done = make(map[string]bool)
	}
	if codeLocations.done[key] {
		return
	}
	codeLocations.done[key] = true

	fn := runtime.FuncForPC(pc)
	log.Infof("first call to %s (%s)", fn.Name(), key)
}
