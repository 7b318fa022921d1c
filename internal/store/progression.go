package store

// Level curve: level n is reached at 100*(n-1)^2 cumulative experience, so
// level = 1 + floor(sqrt(xp/100)). Max energy grows 10 per level above 1.

const (
	BaseMaxEnergy     = 100
	MaxEnergyPerLevel = 10
)

func LevelForExperience(xp int64) int {
	if xp <= 0 {
		return 1
	}
	level := 1
	for threshold := int64(100); threshold <= xp; {
		level++
		n := int64(level) // next level is level+1 at 100*level^2
		threshold = 100 * n * n
	}
	return level
}

// ExperienceForLevel is the cumulative experience at which level is reached.
func ExperienceForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return 100 * n * n
}

func MaxEnergyForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return BaseMaxEnergy + int64(level-1)*MaxEnergyPerLevel
}
