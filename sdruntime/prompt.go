package sdruntime

import (
	"fmt"
	"strings"
)

// MaxPromptLength bounds prompt and negative prompt length in bytes.
const MaxPromptLength = 4000

// NegativeSuffix is appended to every negative prompt. It suppresses the
// usual anatomy and quality artifacts and cannot be disabled per request.
// The term list is kept on one line with no newlines or indentation
// between terms; only the commas separate them.
const NegativeSuffix = ",skin spots,acnes,skin blemishes,age spot,ugly,duplicate,morbid,mutilated," +
	"tranny,mutated hands,poorly drawn hands,blurry,bad anatomy,bad proportions," +
	"extra limbs,disfigured,missing arms,extra legs,fused fingers," +
	"too many fingers,unclear eyes,lowers,bad hands,missing fingers,extra digit," +
	"bad hands,missing fingers,extra arms and legs,worst quality,low quality," +
	"normal quality,lowres"

// AppendNegative returns negative followed by NegativeSuffix.
func AppendNegative(negative string) string {
	return negative + NegativeSuffix
}

// ValidatePrompt rejects prompts the backend cannot carry.
// Empty prompts are allowed; inpainting with no prompt is a valid request.
func ValidatePrompt(prompt string) error {
	if strings.ContainsRune(prompt, '\x00') {
		return fmt.Errorf("%w: prompt contains null bytes", ErrInvalidParams)
	}
	if len(prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt length %d exceeds maximum %d", ErrInvalidParams, len(prompt), MaxPromptLength)
	}
	return nil
}
