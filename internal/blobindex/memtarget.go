package blobindex

import (
	"log"
	"runtime"
)

// MinCacheTargetBytes floors the computed cache target so a tiny or
// misdetected smem knob never starves the cache to the point that every
// get() forces an eviction pass.
const MinCacheTargetBytes = 64 * 1024 * 1024

// ComputeCacheTarget derives CACHE_TARGET from the smem knob (gigabytes
// of RAM the caller is willing to dedicate to the cache), mirroring the
// reference tool's historical "smem GB" command-line parameter. The
// process memory estimate is not consulted here; cache eviction compares
// estimateProcessMemory against the returned target. A caller that does not know its
// host's RAM may pass 0 for smem; ComputeCacheTarget then falls back to a
// quarter of detected total RAM, or MinCacheTargetBytes if detection
// fails.
func ComputeCacheTarget(smemGB float64, verbose bool) int64 {
	if smemGB > 0 {
		target := int64(smemGB * 1024 * 1024 * 1024)
		if target < MinCacheTargetBytes {
			target = MinCacheTargetBytes
		}
		if verbose {
			log.Printf("blob index: cache target %.2f GB (explicit smem)", float64(target)/(1024*1024*1024))
		}
		return target
	}

	totalRAM, err := totalSystemRAM()
	if err != nil {
		if verbose {
			log.Printf("blob index: cannot detect system RAM: %v; using minimum cache target", err)
		}
		return MinCacheTargetBytes
	}

	target := int64(totalRAM) / 4
	if target < MinCacheTargetBytes {
		target = MinCacheTargetBytes
	}
	if verbose {
		log.Printf("blob index: cache target %.2f GB (1/4 of %.2f GB detected RAM)",
			float64(target)/(1024*1024*1024), float64(totalRAM)/(1024*1024*1024))
	}
	return target
}

// estimateProcessMemory returns a rough estimate of process memory usage,
// used to decide whether the cache is over CACHE_TARGET. Unlike the cache's
// own byte accounting (which only knows about entry payloads), this
// folds in Go runtime and heap overhead so the target reflects actual
// resident memory pressure, not just cached bytes.
func estimateProcessMemory(cacheBytes int64) int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return cacheBytes + int64(m.Sys)
}
