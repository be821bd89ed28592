package compiler

import "strings"

// Example is a named sample query shown by the REPL and the playground API.
type Example struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

var examples = []Example{
	{
		Name: "posts",
		Query: `
select post [
  id as post_id
  title
  author_id
  user as author { nickname, avatar } where delete_time is null
  type_id
  post_type {
    name as type
    is_hidden
  } where is_hidden = 0
] where created_at >= :since
    and delete_time is null
`,
	},
	{
		Name: "replies",
		Query: `
select reply [
  post {
    title
    user as author {
      nickname as author
    }
  }
  user as guest {
    nickname as visitor
  }
  comment
]
`,
	},
	{
		Name: "filters",
		Query: `
select post [
  id
, author {
    nickname
  }
  where is_admin = 1
     or is_editor = 1
, title
]
where type_id = 1
   or type_id = 2
`,
	},
}

// Examples returns the built-in sample queries. The returned slice is a copy.
func Examples() []Example {
	out := make([]Example, len(examples))
	for i, ex := range examples {
		out[i] = Example{Name: ex.Name, Query: strings.TrimSpace(ex.Query)}
	}
	return out
}
