package markdown

// DefaultWPM is the reading speed assumed when the caller passes a
// non-positive words-per-minute value.
const DefaultWPM = 250

const msPerMinute = 60_000

// EstimateReadingTime converts a word count to an estimated reading time in
// milliseconds at the given words-per-minute rate. The estimate is floored
// at one minute so that even a near-empty document registers.
func EstimateReadingTime(wordCount, wpm int) int64 {
	if wpm <= 0 {
		wpm = DefaultWPM
	}
	minutes := float64(wordCount) / float64(wpm)
	if minutes < 1 {
		minutes = 1
	}
	return int64(minutes * msPerMinute)
}

// EstimateReadingProgress returns how far through a document a reader is,
// as a percentage 0..100, given time already spent. Non-positive inputs
// yield 0; the result never exceeds 100 regardless of elapsed time.
func EstimateReadingProgress(wordCount int, timeSpentMs int64, wpm int) int {
	if wordCount <= 0 || timeSpentMs <= 0 {
		return 0
	}
	total := EstimateReadingTime(wordCount, wpm)
	percent := float64(timeSpentMs) / float64(total) * 100
	if percent > 100 {
		percent = 100
	}
	return int(percent)
}

// EstimateWordsRead is the inverse mapping: elapsed time to words read,
// floored.
func EstimateWordsRead(timeSpentMs int64, wpm int) int {
	if timeSpentMs <= 0 {
		return 0
	}
	if wpm <= 0 {
		wpm = DefaultWPM
	}
	return int(float64(timeSpentMs) / msPerMinute * float64(wpm))
}
