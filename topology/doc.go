// Package topology describes orchestrator trees in YAML and builds them.
//
// A topology file declares one root team. Every team has a supervisor and a
// list of members; a member is either a model backed worker or a nested
// team, which Build wraps with engine.SubOrchestrator:
//
//	name: editorial_board
//	supervisor:
//	  name: chief_editor
//	  model: openai/gpt-4.1-nano
//	members:
//	  - name: research_team
//	    description: Researches relevant information to answer the query.
//	    team:
//	      supervisor:
//	        model: openai/gpt-4.1-nano
//	      members:
//	        - name: search_agent
//	          model: openai/gpt-4.1-mini
//	          instruction: Find four reputable URLs about the product.
//
// Model ids take the form "<provider>/<model>" and are resolved by a
// ModelResolver, usually Providers.
package topology
