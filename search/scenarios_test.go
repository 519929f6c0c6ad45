package search_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/reachgrep/internal/cache"
	"github.com/flanksource/reachgrep/search"
)

func writeSource(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

func matchTexts(matches []search.Match) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}

var _ = Describe("Engine.Search", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("walks a same-file call chain, covering dropped statements and nested function bodies in source order", func() {
		entry := writeSource(dir, "same-file.js", `function foo() {
  let pin = a;
  bar();
}

function bar() {
  let pin = b;
  abc(pin);

  const abc = (pin) => {
    let pin = c;
    //pin
    moo(pin);
  };
}
`)

		engine := search.New("pin", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{
			"let pin = a;",
			"let pin = b;",
			"abc(pin);",
			"const abc = (pin) => {",
			"let pin = c;",
			"//pin",
			"moo(pin);",
		}))
	})

	It("still reports a statement the parser dropped, via the enclosing block's grep window", func() {
		entry := writeSource(dir, "comments.js", `function foo() {
  pin = bar;
}

function helper() {
  let pin = 1;
}
`)

		engine := search.New("pin", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{"pin = bar;"}))
	})

	It("follows a destructured require across files through a local dispatcher", func() {
		writeSource(dir, "m.js", `function baz(obj) {
  obj.baz = 1;
}

function baz2(obj) {
  obj.baz = 2;
}
`)
		entry := writeSource(dir, "import-test.js", `const { baz, baz2 } = require("./m.js");

function foo() {
  runBoth();
}

function runBoth() {
  baz({});
  baz2({});
}
`)

		engine := search.New("baz", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{
			"baz({});",
			"function baz(obj) {",
			"obj.baz = 1;",
			"baz2({});",
			"function baz2(obj) {",
			"obj.baz = 2;",
		}))
	})

	It("sweeps every assignment at the top level when no start function is given", func() {
		entry := writeSource(dir, "top-level.js", "obj = 1;\nobj = 2;\nobj = 3;\n")

		engine := search.New("obj", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{"obj = 1;", "obj = 2;", "obj = 3;"}))
	})

	It("follows a single-identifier require into a cross-file member assignment", func() {
		writeSource(dir, "a.js", `function fixed() {
  obj.fixed = 1;
}
`)
		entry := writeSource(dir, "index.js", `const fixed = require("./a.js");

function foo() {
  fixed();
}
`)

		engine := search.New("obj.fixed", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{"obj.fixed = 1;"}))
	})

	It("terminates on a mutually-recursive call chain instead of looping forever", func() {
		entry := writeSource(dir, "recursive.js", `function foo() {
  found(1);
  bar();
}

function bar() {
  found(2);
  foo();
}
`)

		engine := search.New("found", cache.NewFileCache(nil))
		matches, err := engine.Search(entry, "foo")
		Expect(err).NotTo(HaveOccurred())
		Expect(matchTexts(matches)).To(Equal([]string{"found(1);", "found(2);"}))
	})

	It("reports a fatal error when a required file does not exist", func() {
		entry := writeSource(dir, "broken-import.js", `const { helper } = require("./missing.js");

function foo() {
  helper();
}
`)

		engine := search.New("helper", cache.NewFileCache(nil))
		_, err := engine.Search(entry, "foo")
		Expect(err).To(HaveOccurred())
	})
})
