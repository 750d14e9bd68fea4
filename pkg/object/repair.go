package object

// The remote service trims trailing whitespace from messages and rounds
// timezone offsets to 30-minute granularity, so a freshly decoded
// commit or tag often no longer hashes to the key it was fetched by.
// Repair searches the bounded space of plausible originals: three
// message variants (as decoded, plus one and two trailing newlines) by
// 49 offsets from -720 to +720 in 30-minute steps.

// Repair tries to mutate obj so that it hashes to want again. Applies
// to commits and tags only; reports whether a match was found. On
// failure obj is left untouched.
func Repair(objType ObjectType, obj any, want Hash) bool {
	switch objType {
	case TypeCommit:
		if c, ok := obj.(*Commit); ok {
			return repairCommit(c, want)
		}
	case TypeTag:
		if t, ok := obj.(*Tag); ok {
			return repairTag(t, want)
		}
	}
	return false
}

func repairCommit(c *Commit, want Hash) bool {
	clone := *c
	message := c.Message
	for round := 0; round < 3; round++ {
		clone.Message = message
		for offset := -720; offset <= 720; offset += 30 {
			clone.Author.Date.Offset = offset
			clone.Committer.Date.Offset = offset
			if HashObject(TypeCommit, MarshalCommit(&clone)) == want {
				c.Message = clone.Message
				c.Author.Date.Offset = offset
				c.Committer.Date.Offset = offset
				return true
			}
		}
		message += "\n"
	}
	return false
}

func repairTag(t *Tag, want Hash) bool {
	clone := *t
	message := t.Message
	for round := 0; round < 3; round++ {
		clone.Message = message
		for offset := -720; offset <= 720; offset += 30 {
			clone.Tagger.Date.Offset = offset
			if HashObject(TypeTag, MarshalTag(&clone)) == want {
				t.Message = clone.Message
				t.Tagger.Date.Offset = offset
				return true
			}
		}
		message += "\n"
	}
	return false
}
