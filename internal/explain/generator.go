// Package explain produces five-year-old-level explanations of computer
// science concepts using a text generation backend.
package explain

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyPrompt is returned by generators asked to complete nothing.
var ErrEmptyPrompt = errors.New("explain: prompt is empty")

// Generator turns a prompt into generated text. Client is the production
// implementation; tests supply their own.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Concepts is the catalogue Explain picks from.
var Concepts = []string{
	"Algorithm",
	"Data Structure",
	"Variable",
	"Function",
	"Loop",
	"Conditional Statement (If/Else)",
	"API (Application Programming Interface)",
	"Database",
	"Version Control (Git)",
	"Operating System",
	"Computer Network",
	"IP Address",
	"DNS (Domain Name System)",
	"HTML",
	"CSS",
	"JavaScript",
	"Python Programming Language",
	"Debugging",
	"Encryption",
	"Cloud Computing",
	"Machine Learning",
	"Artificial Intelligence",
	"Binary Code",
	"Compiler",
	"Recursion",
	"Object-Oriented Programming (OOP)",
	"Boolean Logic",
	"CPU (Central Processing Unit)",
	"RAM (Random Access Memory)",
	"Software Development Life Cycle (SDLC)",
}

// Prompt builds the generation request for one concept.
func Prompt(concept string) string {
	return fmt.Sprintf("Explain the computer science concept of '%s' in a way that a five-year-old would understand. "+
		"Use simple language, real-world analogies, and avoid technical jargon. "+
		"Your explanation should be engaging, clear, and educational. Format your response using markdown "+
		"to make it visually appealing, including headings, lists, bold text, and code examples where appropriate. "+
		"Give a python code explaining the concepts.", concept)
}

// FallbackConcept and FallbackExplanation are served when no generator is
// available, so the UI always has something to show.
const FallbackConcept = "Algorithms"

const FallbackExplanation = `Imagine you want to build a really tall tower with your blocks. You can't just throw blocks randomly, right? You need a plan!
That's kind of what an **algorithm** is! It's like a **set of instructions**, like a recipe, to do something.

Let's say you want to make a peanut butter and jelly sandwich. You wouldn't just magically have a sandwich appear! You need to follow steps, right?

Here's a **sandwich algorithm**:

1. **Get two slices of bread.**
2. **Get the peanut butter.**
3. **Use a spoon to put peanut butter on one slice of bread.**
4. **Get the jelly.**
5. **Use a *clean* spoon to put jelly on the *other* slice of bread.**
6. **Put the two slices of bread together, peanut butter and jelly sides facing each other.**
7. **Yay! You made a sandwich!**

See? Those steps are an **algorithm** for making a sandwich! It's a list of things to do, in order, to get a sandwich at the end.

**Computers are like super-fast helpers!** But they aren't smart on their own. You have to tell them *exactly* what to do, step-by-step, just like our sandwich recipe.

When we give computers these step-by-step instructions, we call them **algorithms**.

**Think of it like this:**

* **You are the chef.** You know what you want the computer to do.
* **The algorithm is your recipe book.** It tells the computer *exactly* what to do in what order.
* **The computer is your super-fast kitchen helper.** It follows your recipe very quickly.

Algorithms can be for anything!

* **Brushing your teeth algorithm:** 1. Get toothbrush. 2. Put toothpaste on toothbrush. 3. Brush up and down. 4. Brush side to side. 5. Rinse mouth.
* **Finding your red car toy algorithm:** 1. Look in the toy box. 2. Is it red? 3. Is it a car? 4. If yes to both, you found it! If no, keep looking.

**So, algorithms are just lists of steps to solve problems or do things, and computers use them to do amazing things really fast!**

Now, let's see a little bit of how we can write an algorithm for a computer using Python. Don't worry if it looks a little strange, just see if you can spot the steps!

~~~python
# This is like our "recipe" for sorting toys by size!
def sort_toys_by_size(toys):
    sorted_toys = sorted(toys)  # This one line does all the magic sorting!
    return sorted_toys

my_toys = ["small teddy bear", "medium car", "big truck"]
print(sort_toys_by_size(my_toys))
~~~
`
