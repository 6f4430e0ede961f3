/*
Package resilience provides a circuit breaker for graceful degradation.

The desktop service uses it in front of the persistent store: when the
backing file cannot be written (disk full, read-only mount) the breaker
opens and the store serves from memory until the cooldown passes, instead of
retrying a failing write on every window operation.

# Usage

	breaker := resilience.New("store", resilience.Settings{
		Timeout:     30 * time.Second,
		ReadyToTrip: resilience.ConsecutiveFailures(3),
	})

	err := breaker.Do(func() error {
		return file.Flush()
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open
*/
package resilience
